package model

const TableSyncState = "sync_state"

type SyncedComponent string

const (
	SyncedComponentEvents SyncedComponent = "Events"
)

// Last fully processed slot per component, used to bound backfills after a
// restart
type SyncState struct {
	Name SyncedComponent `gorm:"primaryKey" json:"name"`

	FinishedSlot      uint64 `json:"finished_slot"`
	FinishedBlockTime int64  `json:"finished_block_time"`
}

func (SyncState) TableName() string {
	return TableSyncState
}
