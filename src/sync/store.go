package sync

import (
	"github.com/0xBased-lang/zmart-syncer/src/utils/config"
	"github.com/0xBased-lang/zmart-syncer/src/utils/model"
	"github.com/0xBased-lang/zmart-syncer/src/utils/monitoring"
	"github.com/0xBased-lang/zmart-syncer/src/utils/task"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store batches processed slots and persists the highest one, so a restart
// knows where the backfill has to start
type Store struct {
	*task.Processor[*SlotPayload, *SlotPayload]

	db      *gorm.DB
	monitor monitoring.Monitor
}

func NewStore(config *config.Config) (self *Store) {
	self = new(Store)

	self.Processor = task.NewProcessor[*SlotPayload, *SlotPayload](config, "store").
		WithBatchSize(config.Syncer.StoreBatchSize).
		WithOnProcess(self.onProcess).
		WithOnFlush(config.Syncer.StoreInterval, self.onFlush).
		WithBackoff(0, config.Syncer.StoreMaxBackoffInterval)

	return
}

func (self *Store) WithDB(db *gorm.DB) *Store {
	self.db = db
	return self
}

func (self *Store) WithMonitor(monitor monitoring.Monitor) *Store {
	self.monitor = monitor
	return self
}

func (self *Store) WithInputChannel(input chan *SlotPayload) *Store {
	self.Processor = self.Processor.WithInputChannel(input)
	return self
}

func (self *Store) onProcess(payload *SlotPayload) (out []*SlotPayload, err error) {
	return []*SlotPayload{payload}, nil
}

func (self *Store) onFlush(payloads []*SlotPayload) (out []*SlotPayload, err error) {
	if len(payloads) == 0 {
		return
	}

	// Workers finish out of order, only the highest slot matters
	newest := payloads[0]
	for _, payload := range payloads[1:] {
		if payload.Slot > newest.Slot {
			newest = payload
		}
	}

	err = self.db.WithContext(self.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"finished_slot", "finished_block_time"}),
		}).
		Create(&model.SyncState{
			Name:              model.SyncedComponentEvents,
			FinishedSlot:      newest.Slot,
			FinishedBlockTime: newest.BlockTime,
		}).
		Error
	if err != nil {
		self.monitor.GetReport().Syncer.Errors.StoreSaveLastStateFailure.Inc()
		return
	}

	self.monitor.GetReport().Syncer.State.LastProcessedSlot.Store(newest.Slot)
	return
}
