package report

import (
	"go.uber.org/atomic"
)

type SyncerErrors struct {
	ListenerReconnects        atomic.Uint64 `json:"listener_reconnects"`
	ListenerParseErrors       atomic.Uint64 `json:"listener_parse_errors"`
	DecodeErrors              atomic.Uint64 `json:"decode_errors"`
	DbRawEventInsert          atomic.Uint64 `json:"db_raw_event_insert"`
	DbEventApply              atomic.Uint64 `json:"db_event_apply"`
	StoreSaveLastStateFailure atomic.Uint64 `json:"store_save_last_state_failure"`
}

type SyncerState struct {
	NotificationsReceived  atomic.Uint64 `json:"notifications_received"`
	EventsDecoded          atomic.Uint64 `json:"events_decoded"`
	EventsApplied          atomic.Uint64 `json:"events_applied"`
	EventsSkippedDuplicate atomic.Uint64 `json:"events_skipped_duplicate"`
	LastProcessedSlot      atomic.Uint64 `json:"last_processed_slot"`

	AverageEventsAppliedPerMinute atomic.Float64 `json:"average_events_applied_per_minute"`
}

type SyncerReport struct {
	State  SyncerState  `json:"state"`
	Errors SyncerErrors `json:"errors"`
}
