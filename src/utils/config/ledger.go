package config

import (
	"time"

	"github.com/spf13/viper"
)

type Ledger struct {
	// Gateway that signs and submits program transactions
	GatewayUrl string

	// Websocket endpoint pushing transaction notifications
	NotificationUrl string

	// Tracked on-ledger program
	ProgramId string

	// Timeout for a single submit-and-confirm call
	SubmitTimeout time.Duration

	// Timeout for plain HTTP requests to the gateway
	RequestTimeout time.Duration

	// Upper bound on gateway requests per second
	RequestsPerSecond int

	// Market address lookups are cached for this long
	AddressCacheTTL time.Duration

	// How often expired address cache entries are purged
	AddressCacheCleanupInterval time.Duration
}

func setLedgerDefaults() {
	viper.SetDefault("Ledger.GatewayUrl", "http://localhost:8899")
	viper.SetDefault("Ledger.NotificationUrl", "ws://localhost:8900")
	viper.SetDefault("Ledger.ProgramId", "7h3gXfBfYFueFVLYyfL5Qo1QGsf4GQUfW96FKVgnUsJS")
	viper.SetDefault("Ledger.SubmitTimeout", "30s")
	viper.SetDefault("Ledger.RequestTimeout", "15s")
	viper.SetDefault("Ledger.RequestsPerSecond", 10)
	viper.SetDefault("Ledger.AddressCacheTTL", "1h")
	viper.SetDefault("Ledger.AddressCacheCleanupInterval", "10m")
}
