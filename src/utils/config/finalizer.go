package config

import (
	"time"

	"github.com/spf13/viper"
)

type Finalizer struct {
	// Cron schedule for finalization passes
	Schedule string

	// Max number of markets finalized in one pass
	BatchSize int

	// Added on top of the dispute window before a market is considered
	// eligible, to avoid racing the exact boundary against clock skew
	// between this process and the ledger
	SafetyBuffer time.Duration

	// Per-market time budget covering the ledger call and the replica update
	MarketTimeout time.Duration

	// Max time between failed retries to submit a ledger transaction
	BackoffInterval time.Duration

	// Total time budget for retrying one submission, 0 is no limit
	BackoffMaxElapsedTime time.Duration
}

func setFinalizerDefaults() {
	viper.SetDefault("Finalizer.Schedule", "@every 5m")
	viper.SetDefault("Finalizer.BatchSize", 10)
	viper.SetDefault("Finalizer.SafetyBuffer", "5m")
	viper.SetDefault("Finalizer.MarketTimeout", "45s")
	viper.SetDefault("Finalizer.BackoffInterval", "3s")
	viper.SetDefault("Finalizer.BackoffMaxElapsedTime", "2m")
}
