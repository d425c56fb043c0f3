package sync

import (
	"encoding/json"

	"github.com/0xBased-lang/zmart-syncer/src/utils/config"
	"github.com/0xBased-lang/zmart-syncer/src/utils/ledger"
	"github.com/0xBased-lang/zmart-syncer/src/utils/model"
	"github.com/0xBased-lang/zmart-syncer/src/utils/monitoring"
	"github.com/0xBased-lang/zmart-syncer/src/utils/task"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ingester decodes notifications and applies the events to the replica.
// Application is idempotent, (signature, event type) pairs that already
// committed are skipped.
type Ingester struct {
	*task.Task

	db      *gorm.DB
	monitor monitoring.Monitor
	decoder *ledger.Decoder

	input chan *ledger.TransactionNotification

	// Fully processed slots, consumed by the store
	Output chan *SlotPayload

	// Changed markets, consumed by the Redis publisher
	MarketUpdates chan *MarketUpdate
}

func NewIngester(config *config.Config) (self *Ingester) {
	self = new(Ingester)

	self.decoder = ledger.NewDecoder(config.Ledger.ProgramId)

	self.Output = make(chan *SlotPayload, config.Syncer.ListenerChannelSize)
	self.MarketUpdates = make(chan *MarketUpdate, config.Syncer.ListenerChannelSize)

	self.Task = task.NewTask(config, "ingester").
		WithSubtaskFunc(self.run).
		WithWorkerPool(config.Syncer.IngesterNumWorkers, config.Syncer.IngesterWorkerQueueSize).
		WithOnAfterStop(func() {
			close(self.Output)
			close(self.MarketUpdates)
		})

	return
}

func (self *Ingester) WithDB(db *gorm.DB) *Ingester {
	self.db = db
	return self
}

func (self *Ingester) WithMonitor(monitor monitoring.Monitor) *Ingester {
	self.monitor = monitor
	return self
}

func (self *Ingester) WithInputChannel(input chan *ledger.TransactionNotification) *Ingester {
	self.input = input
	return self
}

func (self *Ingester) run() (err error) {
	for notification := range self.input {
		notification := notification
		self.SubmitToWorker(func() {
			self.process(notification)
		})
	}
	return nil
}

func (self *Ingester) process(notification *ledger.TransactionNotification) {
	events, errs := self.decoder.Decode(notification)
	for range errs {
		self.monitor.GetReport().Syncer.Errors.DecodeErrors.Inc()
	}
	self.monitor.GetReport().Syncer.State.EventsDecoded.Add(uint64(len(events)))

	for _, event := range events {
		err := self.ingest(event, notification)
		if err != nil {
			self.Log.WithError(err).
				WithField("signature", notification.Signature).
				WithField("event_type", event.Type()).
				Error("Failed to apply event")
			continue
		}

		var state *model.MarketState
		var market model.Market
		err = self.db.WithContext(self.Ctx).
			Select("state").
			Where("market_id = ?", event.Market()).
			First(&market).
			Error
		if err == nil {
			state = &market.State
		} else {
			// Update still goes out without a state, consumers refetch
			self.Log.WithError(err).
				WithField("market_id", event.Market()).
				Warn("Failed to get market state for the update")
		}

		select {
		case self.MarketUpdates <- &MarketUpdate{
			MarketId:  event.Market(),
			EventType: event.Type(),
			State:     state,
			Slot:      notification.Slot,
			BlockTime: notification.BlockTime,
		}:
		case <-self.StopChannel:
			return
		}
	}

	// The slot advances even when some events failed, their raw records
	// keep the error for the backfill job
	select {
	case self.Output <- &SlotPayload{Slot: notification.Slot, BlockTime: notification.BlockTime}:
	case <-self.StopChannel:
	}
}

func (self *Ingester) ingest(event ledger.Event, notification *ledger.TransactionNotification) (err error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	raw := model.RawEvent{
		Signature: notification.Signature,
		EventType: event.Type(),
		Slot:      notification.Slot,
		BlockTime: notification.BlockTime,
	}
	err = raw.Payload.Set(payload)
	if err != nil {
		return
	}

	result := self.db.WithContext(self.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&raw)
	if result.Error != nil {
		self.monitor.GetReport().Syncer.Errors.DbRawEventInsert.Inc()
		return result.Error
	}

	if result.RowsAffected == 0 {
		// Redelivery. Retry the apply only when the first attempt failed.
		err = self.db.WithContext(self.Ctx).
			Where("signature = ? AND event_type = ?", raw.Signature, raw.EventType).
			First(&raw).
			Error
		if err != nil {
			self.monitor.GetReport().Syncer.Errors.DbRawEventInsert.Inc()
			return
		}
		if raw.Processed {
			self.monitor.GetReport().Syncer.State.EventsSkippedDuplicate.Inc()
			return nil
		}
	}

	err = self.db.WithContext(self.Ctx).Transaction(func(tx *gorm.DB) error {
		err := self.apply(tx, event)
		if err != nil {
			return err
		}
		return tx.Model(&model.RawEvent{}).
			Where("id = ?", raw.Id).
			Updates(map[string]interface{}{"processed": true, "error_message": ""}).
			Error
	})
	if err != nil {
		self.monitor.GetReport().Syncer.Errors.DbEventApply.Inc()

		dbErr := self.db.WithContext(self.Ctx).
			Model(&model.RawEvent{}).
			Where("id = ?", raw.Id).
			Update("error_message", err.Error()).
			Error
		if dbErr != nil {
			self.Log.WithError(dbErr).Error("Failed to record apply error")
		}
		return
	}

	self.monitor.GetReport().Syncer.State.EventsApplied.Inc()
	return
}

func (self *Ingester) apply(tx *gorm.DB, event ledger.Event) (err error) {
	switch event := event.(type) {
	case *ledger.MarketCreated:
		return self.applyMarketCreated(tx, event)
	case *ledger.TradeExecuted:
		return self.applyTradeExecuted(tx, event)
	case *ledger.ProposalApproved:
		return self.applyProposalApproved(tx, event)
	case *ledger.MarketResolved:
		return self.applyMarketResolved(tx, event)
	case *ledger.DisputeRaised:
		return self.applyDisputeRaised(tx, event)
	case *ledger.DisputeResolved:
		return self.applyDisputeResolved(tx, event)
	case *ledger.VoteRecorded:
		return self.applyVoteRecorded(tx, event)
	case *ledger.WinningsClaimed:
		return self.applyWinningsClaimed(tx, event)
	default:
		// Decoder and apply lists got out of sync
		self.Log.WithField("event_type", event.Type()).Error("No apply handler for event")
		return nil
	}
}

func (self *Ingester) applyMarketCreated(tx *gorm.DB, event *ledger.MarketCreated) (err error) {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Market{
			MarketId:  event.MarketId,
			Creator:   event.Creator,
			Question:  event.Question,
			State:     model.MarketStateProposed,
			CreatedAt: event.CreatedAt,
		}).
		Error
}

func (self *Ingester) applyTradeExecuted(tx *gorm.DB, event *ledger.TradeExecuted) (err error) {
	market, err := self.lockMarket(tx, event.MarketId)
	if err != nil {
		return
	}

	// First trade activates an approved market
	if market.State == model.MarketStateApproved {
		market.State = model.MarketStateActive
	}

	return tx.Model(market).
		Updates(map[string]interface{}{
			"state":             market.State,
			"shares_yes":        event.NewSharesYes,
			"shares_no":         event.NewSharesNo,
			"current_liquidity": event.NewLiquidity,
			"total_volume":      gorm.Expr("total_volume + ?", event.Amount),
		}).
		Error
}

func (self *Ingester) applyProposalApproved(tx *gorm.DB, event *ledger.ProposalApproved) (err error) {
	market, err := self.lockMarket(tx, event.MarketId)
	if err != nil {
		return
	}

	if !market.State.CanTransitionTo(model.MarketStateApproved) {
		self.logSkippedTransition(market, model.MarketStateApproved, event.Type())
		return nil
	}

	total := int64(event.Likes) + int64(event.Dislikes)
	return tx.Model(market).
		Updates(map[string]interface{}{
			"state":                model.MarketStateApproved,
			"proposal_likes":       event.Likes,
			"proposal_dislikes":    event.Dislikes,
			"proposal_total_votes": total,
			"approved_at":          event.Timestamp,
		}).
		Error
}

func (self *Ingester) applyMarketResolved(tx *gorm.DB, event *ledger.MarketResolved) (err error) {
	market, err := self.lockMarket(tx, event.MarketId)
	if err != nil {
		return
	}

	if !market.State.CanTransitionTo(model.MarketStateResolving) {
		self.logSkippedTransition(market, model.MarketStateResolving, event.Type())
		return nil
	}

	return tx.Model(market).
		Updates(map[string]interface{}{
			"state":                  model.MarketStateResolving,
			"proposed_outcome":       event.ProposedOutcome,
			"resolution_proposed_at": event.Timestamp,
		}).
		Error
}

func (self *Ingester) applyDisputeRaised(tx *gorm.DB, event *ledger.DisputeRaised) (err error) {
	market, err := self.lockMarket(tx, event.MarketId)
	if err != nil {
		return
	}

	if !market.State.CanTransitionTo(model.MarketStateDisputed) {
		self.logSkippedTransition(market, model.MarketStateDisputed, event.Type())
		return nil
	}

	return tx.Model(market).
		Updates(map[string]interface{}{
			"state":        model.MarketStateDisputed,
			"was_disputed": true,
		}).
		Error
}

func (self *Ingester) applyDisputeResolved(tx *gorm.DB, event *ledger.DisputeResolved) (err error) {
	market, err := self.lockMarket(tx, event.MarketId)
	if err != nil {
		return
	}

	if !market.State.CanTransitionTo(model.MarketStateFinalized) {
		self.logSkippedTransition(market, model.MarketStateFinalized, event.Type())
		return nil
	}

	total := int64(event.Agrees) + int64(event.Disagrees)
	return tx.Model(market).
		Updates(map[string]interface{}{
			"state":               model.MarketStateFinalized,
			"dispute_agree":       event.Agrees,
			"dispute_disagree":    event.Disagrees,
			"dispute_total_votes": total,
			"final_outcome":       event.FinalOutcome,
			"finalized_at":        event.Timestamp,
		}).
		Error
}

func (self *Ingester) applyVoteRecorded(tx *gorm.DB, event *ledger.VoteRecorded) (err error) {
	kind := model.VoteKindProposal
	if event.Kind == ledger.VoteKindDispute {
		kind = model.VoteKindDispute
	}

	// One vote per (market, voter, kind), later votes don't overwrite
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Vote{
			MarketId: event.MarketId,
			Voter:    event.Voter,
			Kind:     kind,
			Choice:   event.Choice,
			VotedAt:  event.Timestamp,
		}).
		Error
}

func (self *Ingester) applyWinningsClaimed(tx *gorm.DB, event *ledger.WinningsClaimed) (err error) {
	return tx.Model(&model.Market{MarketId: event.MarketId}).
		Update("total_claimed", gorm.Expr("total_claimed + ?", event.Amount)).
		Error
}

func (self *Ingester) lockMarket(tx *gorm.DB, marketId string) (market *model.Market, err error) {
	market = new(model.Market)
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("market_id = ?", marketId).
		First(market).
		Error
	return
}

func (self *Ingester) logSkippedTransition(market *model.Market, next model.MarketState, eventType string) {
	self.Log.WithField("market_id", market.MarketId).
		WithField("state", market.State.String()).
		WithField("next", next.String()).
		WithField("event_type", eventType).
		Warn("Skipping event, transition not allowed")
}
