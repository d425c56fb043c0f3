package model

import (
	"github.com/jackc/pgtype"
)

const TableRawEvents = "raw_events"

// One decoded ledger event as it was received. (signature, event_type) is the
// idempotency key: the notification feed is at-least-once and re-deliveries
// must be no-ops.
type RawEvent struct {
	Id int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Signature string `gorm:"uniqueIndex:idx_raw_events_signature_event_type" json:"signature"`
	EventType string `gorm:"uniqueIndex:idx_raw_events_signature_event_type" json:"event_type"`

	Slot      uint64       `json:"slot"`
	BlockTime int64        `json:"block_time"`
	Payload   pgtype.JSONB `json:"payload"`

	// Set once the replica write committed
	Processed bool `json:"processed"`

	// Last apply failure, kept for the backfill job
	ErrorMessage string `json:"error_message"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
}

func (RawEvent) TableName() string {
	return TableRawEvents
}
