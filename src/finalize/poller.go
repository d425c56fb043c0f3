package finalize

import (
	"context"
	"time"

	"github.com/0xBased-lang/zmart-syncer/src/utils/config"
	"github.com/0xBased-lang/zmart-syncer/src/utils/ledger"
	"github.com/0xBased-lang/zmart-syncer/src/utils/model"
	"github.com/0xBased-lang/zmart-syncer/src/utils/monitoring"
	"github.com/0xBased-lang/zmart-syncer/src/utils/task"

	"github.com/rs/xid"
	"go.uber.org/atomic"
	"gorm.io/gorm"
)

// Summary describes one finalization pass
type Summary struct {
	Found     int `json:"found"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Finalizes Resolving markets nobody disputed within the window. Disputed
// markets are closed by the dispute aggregation pass instead.
type Poller struct {
	*task.Task

	db      *gorm.DB
	monitor monitoring.Monitor
	client  *ledger.Client

	isRunning atomic.Bool
}

func NewPoller(config *config.Config) (self *Poller) {
	self = new(Poller)

	self.Task = task.NewTask(config, "poller-finalize").
		WithCronSubtaskFunc(config.Finalizer.Schedule, self.runScheduled)

	return
}

func (self *Poller) WithDB(db *gorm.DB) *Poller {
	self.db = db
	return self
}

func (self *Poller) WithMonitor(monitor monitoring.Monitor) *Poller {
	self.monitor = monitor
	return self
}

func (self *Poller) WithClient(client *ledger.Client) *Poller {
	self.client = client
	return self
}

func (self *Poller) IsRunning() bool {
	return self.isRunning.Load()
}

func (self *Poller) runScheduled() (err error) {
	_, err = self.RunNow()
	return
}

// RunNow performs one pass. Concurrent calls while a pass is in flight are
// a no-op.
func (self *Poller) RunNow() (summary Summary, err error) {
	if !self.isRunning.CompareAndSwap(false, true) {
		self.Log.Info("Finalization pass already running, skipping")
		return
	}
	defer self.isRunning.Store(false)

	self.monitor.GetReport().Finalizer.State.PassesRun.Inc()
	self.monitor.GetReport().Finalizer.State.LastPassTimestamp.Store(time.Now().Unix())

	// The safety buffer keeps the cutoff clear of clock skew between this
	// process and the ledger
	window := self.Config.Aggregator.DisputeWindow + self.Config.Finalizer.SafetyBuffer
	cutoff := time.Now().Add(-window).Unix()

	var markets []*model.Market
	err = self.db.WithContext(self.Ctx).
		Where("state = ? AND resolution_proposed_at <= ?", model.MarketStateResolving, cutoff).
		Order("resolution_proposed_at ASC").
		Limit(self.Config.Finalizer.BatchSize).
		Find(&markets).
		Error
	if err != nil {
		self.monitor.GetReport().Finalizer.Errors.DbFetchErrors.Inc()
		self.Log.WithError(err).Error("Failed to fetch markets awaiting finalization")
		return
	}

	summary.Found = len(markets)
	self.monitor.GetReport().Finalizer.State.MarketsFound.Add(uint64(summary.Found))

	for _, market := range markets {
		processErr := self.process(market)
		if processErr != nil {
			summary.Failed++
			self.monitor.GetReport().Finalizer.Errors.FinalizeFailures.Inc()
			self.recordError(market, processErr)
			continue
		}
		summary.Succeeded++
	}

	self.monitor.GetReport().Finalizer.State.MarketsFinalized.Add(uint64(summary.Succeeded))

	self.Log.WithField("found", summary.Found).
		WithField("succeeded", summary.Succeeded).
		WithField("failed", summary.Failed).
		Info("Finalization pass done")
	return
}

func (self *Poller) process(market *model.Market) (err error) {
	// A stuck market must not eat the whole pass
	ctx, cancel := context.WithTimeout(self.Ctx, self.Config.Finalizer.MarketTimeout)
	defer cancel()

	address, err := self.client.MarketAddress(ctx, market.MarketId)
	if err != nil {
		return
	}

	err = task.NewRetry().
		WithContext(ctx).
		WithMaxElapsedTime(self.Config.Finalizer.BackoffMaxElapsedTime).
		WithMaxInterval(self.Config.Finalizer.BackoffInterval).
		Run(func() (err error) {
			_, err = self.client.SubmitAndConfirm(ctx, "finalize_market",
				[]string{address},
				map[string]interface{}{
					"outcome":           market.ProposedOutcome,
					"dispute_agrees":    nil,
					"dispute_disagrees": nil,
				})
			return
		})
	if err != nil {
		return
	}

	// Optimistic update, the ingested DisputeResolved event reconciles it
	return self.db.WithContext(ctx).
		Model(market).
		Updates(map[string]interface{}{
			"state":         model.MarketStateFinalized,
			"final_outcome": market.ProposedOutcome,
			"finalized_at":  time.Now().Unix(),
		}).
		Error
}

func (self *Poller) recordError(market *model.Market, processErr error) {
	var attempts int64
	err := self.db.WithContext(self.Ctx).
		Model(&model.FinalizationError{}).
		Where("market_id = ? AND resolved_at IS NULL", market.MarketId).
		Count(&attempts).
		Error
	if err != nil {
		self.monitor.GetReport().Finalizer.Errors.ErrorRecordFailures.Inc()
		self.Log.WithError(err).Error("Failed to count previous finalization errors")
		return
	}

	err = self.db.WithContext(self.Ctx).
		Create(&model.FinalizationError{
			Id:           xid.New().String(),
			MarketId:     market.MarketId,
			ErrorMessage: processErr.Error(),
			Attempts:     int(attempts) + 1,
			CreatedAt:    time.Now().Unix(),
		}).
		Error
	if err != nil {
		self.monitor.GetReport().Finalizer.Errors.ErrorRecordFailures.Inc()
		self.Log.WithError(err).
			WithField("market_id", market.MarketId).
			Error("Failed to record finalization error")
	}
}
