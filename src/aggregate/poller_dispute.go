package aggregate

import (
	"time"

	"github.com/0xBased-lang/zmart-syncer/src/utils/config"
	"github.com/0xBased-lang/zmart-syncer/src/utils/ledger"
	"github.com/0xBased-lang/zmart-syncer/src/utils/model"
	"github.com/0xBased-lang/zmart-syncer/src/utils/monitoring"
	"github.com/0xBased-lang/zmart-syncer/src/utils/task"

	"go.uber.org/atomic"
	"gorm.io/gorm"
)

// Evaluates dispute votes for Disputed markets once their dispute window
// elapsed. A successful dispute flips the proposed outcome, a failed one
// keeps it, either way the market gets finalized on the ledger.
type PollerDispute struct {
	*task.Task

	db      *gorm.DB
	monitor monitoring.Monitor
	client  *ledger.Client

	isRunning atomic.Bool
}

func NewPollerDispute(config *config.Config) (self *PollerDispute) {
	self = new(PollerDispute)

	self.Task = task.NewTask(config, "poller-dispute").
		WithCronSubtaskFunc(config.Aggregator.DisputeSchedule, self.runScheduled)

	return
}

func (self *PollerDispute) WithDB(db *gorm.DB) *PollerDispute {
	self.db = db
	return self
}

func (self *PollerDispute) WithMonitor(monitor monitoring.Monitor) *PollerDispute {
	self.monitor = monitor
	return self
}

func (self *PollerDispute) WithClient(client *ledger.Client) *PollerDispute {
	self.client = client
	return self
}

func (self *PollerDispute) IsRunning() bool {
	return self.isRunning.Load()
}

func (self *PollerDispute) runScheduled() (err error) {
	_, err = self.RunNow()
	return
}

// RunNow performs one pass. Concurrent calls while a pass is in flight are
// a no-op.
func (self *PollerDispute) RunNow() (summary Summary, err error) {
	if !self.isRunning.CompareAndSwap(false, true) {
		self.Log.Info("Dispute pass already running, skipping")
		return
	}
	defer self.isRunning.Store(false)

	self.monitor.GetReport().Aggregator.State.DisputePassesRun.Inc()
	self.monitor.GetReport().Aggregator.State.LastPassTimestamp.Store(time.Now().Unix())

	var markets []*model.Market
	err = self.db.WithContext(self.Ctx).
		Where("state = ?", model.MarketStateDisputed).
		Order("resolution_proposed_at ASC").
		Limit(self.Config.Aggregator.BatchSize).
		Find(&markets).
		Error
	if err != nil {
		self.monitor.GetReport().Aggregator.Errors.DbFetchErrors.Inc()
		self.monitor.GetReport().Aggregator.Errors.DisputePassFailures.Inc()
		self.Log.WithError(err).Error("Failed to fetch disputed markets")
		return
	}

	now := time.Now().Unix()
	for _, market := range markets {
		summary.Scanned++

		decided, processErr := self.process(market, now)
		if processErr != nil {
			summary.Errored++
			self.Log.WithError(processErr).
				WithField("market_id", market.MarketId).
				Error("Failed to aggregate dispute votes")
			continue
		}
		if decided {
			summary.Decided++
		}
	}

	self.monitor.GetReport().Aggregator.State.MarketsScanned.Add(uint64(summary.Scanned))
	self.monitor.GetReport().Aggregator.State.DisputesDecided.Add(uint64(summary.Decided))

	self.Log.WithField("scanned", summary.Scanned).
		WithField("decided", summary.Decided).
		WithField("errored", summary.Errored).
		Info("Dispute pass done")
	return
}

func (self *PollerDispute) process(market *model.Market, now int64) (decided bool, err error) {
	tally, err := tallyVotes(self.db.WithContext(self.Ctx), market.MarketId, model.VoteKindDispute)
	if err != nil {
		self.monitor.GetReport().Aggregator.Errors.DbFetchErrors.Inc()
		return
	}

	windowEnd := market.ResolutionProposedAt + int64(self.Config.Aggregator.DisputeWindow/time.Second)
	if now < windowEnd {
		// Window still open, no ledger write no matter the tally. The
		// snapshot is refreshed so the counts are visible.
		err = self.db.WithContext(self.Ctx).
			Model(market).
			Updates(map[string]interface{}{
				"dispute_agree":       tally.Positive,
				"dispute_disagree":    tally.Negative,
				"dispute_total_votes": tally.Total(),
			}).
			Error
		return false, err
	}

	succeeded := tally.MeetsThreshold(self.Config.Aggregator.DisputeThresholdBps)
	finalOutcome := FinalOutcome(market.ProposedOutcome, succeeded)

	address, err := self.client.MarketAddress(self.Ctx, market.MarketId)
	if err != nil {
		self.monitor.GetReport().Aggregator.Errors.SubmitErrors.Inc()
		return
	}

	err = task.NewRetry().
		WithContext(self.Ctx).
		WithMaxElapsedTime(self.Config.Aggregator.BackoffMaxElapsedTime).
		WithMaxInterval(self.Config.Aggregator.BackoffInterval).
		Run(func() (err error) {
			_, err = self.client.SubmitAndConfirm(self.Ctx, "aggregate_dispute_votes",
				[]string{address},
				map[string]interface{}{
					"agrees":        tally.Positive,
					"disagrees":     tally.Negative,
					"succeeded":     succeeded,
					"final_outcome": finalOutcome,
				})
			return
		})
	if err != nil {
		self.monitor.GetReport().Aggregator.Errors.SubmitErrors.Inc()
		return
	}

	// Optimistic update, the ingested DisputeResolved event reconciles it
	err = self.db.WithContext(self.Ctx).
		Model(market).
		Updates(map[string]interface{}{
			"state":               model.MarketStateFinalized,
			"dispute_agree":       tally.Positive,
			"dispute_disagree":    tally.Negative,
			"dispute_total_votes": tally.Total(),
			"final_outcome":       finalOutcome,
			"finalized_at":        time.Now().Unix(),
		}).
		Error
	if err != nil {
		return
	}

	return true, nil
}
