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

// Evaluates proposal votes for markets stuck in Proposed. A market that
// clears the approval threshold gets an aggregation transaction submitted,
// the replica is updated optimistically and later reconciled by the
// ingested event.
type PollerProposal struct {
	*task.Task

	db      *gorm.DB
	monitor monitoring.Monitor
	client  *ledger.Client

	isRunning atomic.Bool
}

func NewPollerProposal(config *config.Config) (self *PollerProposal) {
	self = new(PollerProposal)

	self.Task = task.NewTask(config, "poller-proposal").
		WithCronSubtaskFunc(config.Aggregator.ProposalSchedule, self.runScheduled)

	return
}

func (self *PollerProposal) WithDB(db *gorm.DB) *PollerProposal {
	self.db = db
	return self
}

func (self *PollerProposal) WithMonitor(monitor monitoring.Monitor) *PollerProposal {
	self.monitor = monitor
	return self
}

func (self *PollerProposal) WithClient(client *ledger.Client) *PollerProposal {
	self.client = client
	return self
}

func (self *PollerProposal) IsRunning() bool {
	return self.isRunning.Load()
}

func (self *PollerProposal) runScheduled() (err error) {
	_, err = self.RunNow()
	return
}

// RunNow performs one pass. Concurrent calls while a pass is in flight are
// a no-op.
func (self *PollerProposal) RunNow() (summary Summary, err error) {
	if !self.isRunning.CompareAndSwap(false, true) {
		self.Log.Info("Proposal pass already running, skipping")
		return
	}
	defer self.isRunning.Store(false)

	self.monitor.GetReport().Aggregator.State.ProposalPassesRun.Inc()
	self.monitor.GetReport().Aggregator.State.LastPassTimestamp.Store(time.Now().Unix())

	var markets []*model.Market
	err = self.db.WithContext(self.Ctx).
		Where("state = ?", model.MarketStateProposed).
		Order("created_at ASC").
		Limit(self.Config.Aggregator.BatchSize).
		Find(&markets).
		Error
	if err != nil {
		// Pass aborts only when it cannot even fetch candidates
		self.monitor.GetReport().Aggregator.Errors.DbFetchErrors.Inc()
		self.monitor.GetReport().Aggregator.Errors.ProposalPassFailures.Inc()
		self.Log.WithError(err).Error("Failed to fetch proposed markets")
		return
	}

	for _, market := range markets {
		summary.Scanned++

		decided, processErr := self.process(market)
		if processErr != nil {
			summary.Errored++
			self.Log.WithError(processErr).
				WithField("market_id", market.MarketId).
				Error("Failed to aggregate proposal votes")
			continue
		}
		if decided {
			summary.Decided++
		}
	}

	self.monitor.GetReport().Aggregator.State.MarketsScanned.Add(uint64(summary.Scanned))
	self.monitor.GetReport().Aggregator.State.MarketsApproved.Add(uint64(summary.Decided))

	self.Log.WithField("scanned", summary.Scanned).
		WithField("decided", summary.Decided).
		WithField("errored", summary.Errored).
		Info("Proposal pass done")
	return
}

func (self *PollerProposal) process(market *model.Market) (decided bool, err error) {
	tally, err := tallyVotes(self.db.WithContext(self.Ctx), market.MarketId, model.VoteKindProposal)
	if err != nil {
		self.monitor.GetReport().Aggregator.Errors.DbFetchErrors.Inc()
		return
	}

	if !tally.MeetsThreshold(self.Config.Aggregator.ProposalThresholdBps) {
		// Stays Proposed, re-evaluated next pass
		return false, nil
	}

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
			_, err = self.client.SubmitAndConfirm(self.Ctx, "aggregate_proposal_votes",
				[]string{address},
				map[string]interface{}{
					"likes":    tally.Positive,
					"dislikes": tally.Negative,
					"approved": true,
				})
			return
		})
	if err != nil {
		self.monitor.GetReport().Aggregator.Errors.SubmitErrors.Inc()
		return
	}

	// Optimistic update, the ingested ProposalApproved event reconciles it
	err = self.db.WithContext(self.Ctx).
		Model(market).
		Updates(map[string]interface{}{
			"state":                model.MarketStateApproved,
			"proposal_likes":       tally.Positive,
			"proposal_dislikes":    tally.Negative,
			"proposal_total_votes": tally.Total(),
			"approved_at":          time.Now().Unix(),
		}).
		Error
	if err != nil {
		return
	}

	return true, nil
}
