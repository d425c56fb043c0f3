package sync

import (
	"github.com/0xBased-lang/zmart-syncer/src/utils/config"
	"github.com/0xBased-lang/zmart-syncer/src/utils/model"
	"github.com/0xBased-lang/zmart-syncer/src/utils/monitoring"
	monitor_syncer "github.com/0xBased-lang/zmart-syncer/src/utils/monitoring/syncer"
	"github.com/0xBased-lang/zmart-syncer/src/utils/publisher"
	"github.com/0xBased-lang/zmart-syncer/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Wires the event ingestion pipeline:
// listener -> ingester -> store (sync state)
//                      -> redis publisher (market updates)
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "sync-controller")

	// SQL database
	db, err := model.NewConnection(self.Ctx, config, "sync")
	if err != nil {
		return
	}

	// Monitoring
	monitor := monitor_syncer.NewMonitor().
		WithMaxHistorySize(30)
	server := monitoring.NewServer(config).
		WithMonitor(monitor)

	// Streams transaction notifications
	listener := NewListener(config).
		WithMonitor(monitor)

	// Decodes and applies events
	ingester := NewIngester(config).
		WithDB(db).
		WithMonitor(monitor).
		WithInputChannel(listener.Output)

	// Persists the last fully processed slot
	store := NewStore(config).
		WithDB(db).
		WithMonitor(monitor).
		WithInputChannel(ingester.Output)

	// Pushes market updates to the realtime layer
	marketPublisher := publisher.NewRedisPublisher[*MarketUpdate](config, "market-publisher").
		WithMonitor(monitor).
		WithChannelName(config.Redis.MarketUpdatesChannelName).
		WithInputChannel(ingester.MarketUpdates)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithSubtask(listener.Task).
		WithSubtask(ingester.Task).
		WithSubtask(store.Task).
		WithSubtask(marketPublisher.Task)
	return
}
