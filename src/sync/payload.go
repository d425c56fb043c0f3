package sync

import (
	"encoding/json"

	"github.com/0xBased-lang/zmart-syncer/src/utils/model"
)

// SlotPayload marks a fully processed notification, consumed by the store
// to advance the sync state
type SlotPayload struct {
	Slot      uint64
	BlockTime int64
}

// MarketUpdate is pushed to the realtime layer after an event changed the
// replica. State is nil when the snapshot could not be read, consumers
// refetch the market in that case.
type MarketUpdate struct {
	MarketId  string             `json:"market_id"`
	EventType string             `json:"event_type"`
	State     *model.MarketState `json:"state,omitempty"`
	Slot      uint64             `json:"slot"`
	BlockTime int64              `json:"block_time"`
}

func (self *MarketUpdate) MarshalBinary() ([]byte, error) {
	return json.Marshal(self)
}
