package finalize

import (
	"net/http"

	"github.com/0xBased-lang/zmart-syncer/src/utils/config"
	"github.com/0xBased-lang/zmart-syncer/src/utils/ledger"
	"github.com/0xBased-lang/zmart-syncer/src/utils/model"
	"github.com/0xBased-lang/zmart-syncer/src/utils/monitoring"
	monitor_finalizer "github.com/0xBased-lang/zmart-syncer/src/utils/monitoring/finalizer"
	"github.com/0xBased-lang/zmart-syncer/src/utils/task"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	*task.Task

	poller *Poller
}

// Wires the scheduled finalization pass and its manual trigger
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "finalize-controller")

	// SQL database
	db, err := model.NewConnection(self.Ctx, config, "finalize")
	if err != nil {
		return
	}

	// Gateway client
	client := ledger.NewClient(config)

	// Monitoring
	monitor := monitor_finalizer.NewMonitor()
	server := monitoring.NewServer(config).
		WithMonitor(monitor).
		WithRoutes(self.registerRoutes)

	self.poller = NewPoller(config).
		WithDB(db).
		WithMonitor(monitor).
		WithClient(client)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithSubtask(self.poller.Task)
	return
}

func (self *Controller) registerRoutes(router gin.IRouter) {
	router.POST("finalize", self.onRunFinalize)
	router.GET("status", self.onGetStatus)
}

func (self *Controller) onRunFinalize(c *gin.Context) {
	summary, err := self.poller.RunNow()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, &summary)
}

func (self *Controller) onGetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running":        self.poller.IsRunning(),
		"dispute_window": self.Config.Aggregator.DisputeWindow.String(),
		"safety_buffer":  self.Config.Finalizer.SafetyBuffer.String(),
		"batch_size":     self.Config.Finalizer.BatchSize,
	})
}
