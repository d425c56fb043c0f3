package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RetryTestSuite struct {
	suite.Suite
}

func TestRetryTestSuite(t *testing.T) {
	suite.Run(t, new(RetryTestSuite))
}

func (s *RetryTestSuite) TestSucceedsFirstTry() {
	calls := 0
	err := NewRetry().
		WithMaxElapsedTime(time.Second).
		Run(func() error {
			calls++
			return nil
		})
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, calls)
}

func (s *RetryTestSuite) TestRetriesUntilSuccess() {
	calls := 0
	err := NewRetry().
		WithInitialInterval(time.Millisecond).
		WithMaxElapsedTime(5 * time.Second).
		Run(func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
	require.NoError(s.T(), err)
	require.Equal(s.T(), 3, calls)
}

func (s *RetryTestSuite) TestMaxRetriesPropagatesLastError() {
	expected := errors.New("still broken")
	calls := 0
	err := NewRetry().
		WithInitialInterval(time.Millisecond).
		WithMaxRetries(2).
		Run(func() error {
			calls++
			return expected
		})
	require.ErrorIs(s.T(), err, expected)
	require.Equal(s.T(), 3, calls)
}

func (s *RetryTestSuite) TestPermanentErrorStopsRetrying() {
	expected := errors.New("bad request")
	calls := 0
	err := NewRetry().
		WithInitialInterval(time.Millisecond).
		WithMaxElapsedTime(5 * time.Second).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			return backoff.Permanent(err)
		}).
		Run(func() error {
			calls++
			return expected
		})
	require.ErrorIs(s.T(), err, expected)
	require.Equal(s.T(), 1, calls)
}

func (s *RetryTestSuite) TestCancelledContextStops() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRetry().
		WithContext(ctx).
		WithInitialInterval(time.Millisecond).
		Run(func() error {
			return errors.New("transient")
		})
	require.Error(s.T(), err)
}

func (s *RetryTestSuite) TestOnErrorSeesEveryFailure() {
	var seen []error
	expected := errors.New("transient")

	_ = NewRetry().
		WithInitialInterval(time.Millisecond).
		WithMaxRetries(2).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			seen = append(seen, err)
			return err
		}).
		Run(func() error {
			return expected
		})
	require.Len(s.T(), seen, 3)
	require.ErrorIs(s.T(), seen[0], expected)
}
