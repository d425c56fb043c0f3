package report

import (
	"go.uber.org/atomic"
)

// Counters of the market update publisher
type RedisPublisherErrors struct {
	Publish           atomic.Uint64 `json:"publish"`
	PersistentFailure atomic.Uint64 `json:"persistent_failure"`
}

type RedisPublisherState struct {
	MessagesPublished              atomic.Uint64 `json:"messages_published"`
	LastSuccessfulMessageTimestamp atomic.Int64  `json:"last_successful_message_timestamp"`
}

type RedisPublisherReport struct {
	State  RedisPublisherState  `json:"state"`
	Errors RedisPublisherErrors `json:"errors"`
}
