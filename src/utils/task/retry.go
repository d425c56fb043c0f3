package task

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Implement operation retrying. This is the single place backoff policy is
// defined; every outward call that may fail transiently routes through it.
type Retry struct {
	ctx                context.Context
	maxElapsedTime     time.Duration
	maxInterval        time.Duration
	initialInterval    time.Duration
	maxRetries         uint64
	acceptableDuration time.Duration
	onError            func(err error, isDurationAcceptable bool) error
}

func NewRetry() *Retry {
	return new(Retry)
}

func (self *Retry) WithMaxElapsedTime(maxElapsedTime time.Duration) *Retry {
	self.maxElapsedTime = maxElapsedTime
	return self
}

func (self *Retry) WithMaxInterval(maxInterval time.Duration) *Retry {
	self.maxInterval = maxInterval
	return self
}

func (self *Retry) WithInitialInterval(initialInterval time.Duration) *Retry {
	self.initialInterval = initialInterval
	return self
}

// Zero means unlimited attempts
func (self *Retry) WithMaxRetries(maxRetries uint64) *Retry {
	self.maxRetries = maxRetries
	return self
}

func (self *Retry) WithContext(ctx context.Context) *Retry {
	self.ctx = ctx
	return self
}

// Retries taking longer than this are signalled through the onError callback,
// so the caller may decide to give up with backoff.Permanent
func (self *Retry) WithAcceptableDuration(duration time.Duration) *Retry {
	self.acceptableDuration = duration
	return self
}

func (self *Retry) WithOnError(v func(err error, isDurationAcceptable bool) error) *Retry {
	self.onError = v
	return self
}

func (self *Retry) Run(f func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = self.maxElapsedTime
	if self.maxInterval > 0 {
		b.MaxInterval = self.maxInterval
	}
	if self.initialInterval > 0 {
		b.InitialInterval = self.initialInterval
	}

	started := time.Now()
	wrapped := func() error {
		err := f()
		if err == nil {
			return nil
		}
		if self.onError != nil {
			isDurationAcceptable := self.acceptableDuration <= 0 ||
				time.Since(started) < self.acceptableDuration
			return self.onError(err, isDurationAcceptable)
		}
		return err
	}

	var policy backoff.BackOff = b
	if self.maxRetries > 0 {
		policy = backoff.WithMaxRetries(policy, self.maxRetries)
	}
	if self.ctx != nil {
		policy = backoff.WithContext(policy, self.ctx)
	}

	return backoff.Retry(wrapped, policy)
}
