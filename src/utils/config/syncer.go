package config

import (
	"time"

	"github.com/spf13/viper"
)

type Syncer struct {
	// Maximum length of the listener's output channel
	ListenerChannelSize int

	// Max time between failed reconnects to the notification feed
	ListenerBackoffInterval time.Duration

	// Number of workers that apply decoded events
	IngesterNumWorkers int

	// Max number of notifications waiting in the worker queue
	IngesterWorkerQueueSize int

	// Max batch size before last processed slot is saved to the database
	StoreBatchSize int

	// After this time last processed slot is saved to the database
	StoreInterval time.Duration

	// Max time between failed retries to save last processed slot
	StoreMaxBackoffInterval time.Duration
}

func setSyncerDefaults() {
	viper.SetDefault("Syncer.ListenerChannelSize", 100)
	viper.SetDefault("Syncer.ListenerBackoffInterval", "3s")
	viper.SetDefault("Syncer.IngesterNumWorkers", 10)
	viper.SetDefault("Syncer.IngesterWorkerQueueSize", 100)
	viper.SetDefault("Syncer.StoreBatchSize", 500)
	viper.SetDefault("Syncer.StoreInterval", "2s")
	viper.SetDefault("Syncer.StoreMaxBackoffInterval", "30s")
}
