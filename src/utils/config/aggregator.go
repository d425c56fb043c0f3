package config

import (
	"time"

	"github.com/spf13/viper"
)

type Aggregator struct {
	// Cron schedule for proposal vote passes
	ProposalSchedule string

	// Cron schedule for dispute vote passes
	DisputeSchedule string

	// Proposal approval threshold in basis points (7000 = 70%)
	ProposalThresholdBps int64

	// Dispute success threshold in basis points (6000 = 60%)
	DisputeThresholdBps int64

	// Waiting period after a resolution is proposed during which a dispute
	// may be raised. Shared with the finalizer so both sides of the lifecycle
	// agree on a single window.
	// NOTE: product docs state the window in hours while an older aggregation
	// job derived a multi-day value. This single knob is the only source now.
	DisputeWindow time.Duration

	// Max number of markets evaluated in one pass
	BatchSize int

	// Max time between failed retries to submit a ledger transaction
	BackoffInterval time.Duration

	// Total time budget for retrying one submission, 0 is no limit
	BackoffMaxElapsedTime time.Duration
}

func setAggregatorDefaults() {
	viper.SetDefault("Aggregator.ProposalSchedule", "@every 5m")
	viper.SetDefault("Aggregator.DisputeSchedule", "@every 5m")
	viper.SetDefault("Aggregator.ProposalThresholdBps", 7000)
	viper.SetDefault("Aggregator.DisputeThresholdBps", 6000)
	viper.SetDefault("Aggregator.DisputeWindow", "48h")
	viper.SetDefault("Aggregator.BatchSize", 100)
	viper.SetDefault("Aggregator.BackoffInterval", "3s")
	viper.SetDefault("Aggregator.BackoffMaxElapsedTime", "2m")
}
