package aggregate

import (
	"net/http"

	"github.com/0xBased-lang/zmart-syncer/src/utils/config"
	"github.com/0xBased-lang/zmart-syncer/src/utils/ledger"
	"github.com/0xBased-lang/zmart-syncer/src/utils/model"
	"github.com/0xBased-lang/zmart-syncer/src/utils/monitoring"
	monitor_aggregator "github.com/0xBased-lang/zmart-syncer/src/utils/monitoring/aggregator"
	"github.com/0xBased-lang/zmart-syncer/src/utils/task"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	*task.Task

	pollerProposal *PollerProposal
	pollerDispute  *PollerDispute
}

// Wires the two scheduled aggregation passes and their manual triggers
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "aggregate-controller")

	// SQL database
	db, err := model.NewConnection(self.Ctx, config, "aggregate")
	if err != nil {
		return
	}

	// Gateway client
	client := ledger.NewClient(config)

	// Monitoring
	monitor := monitor_aggregator.NewMonitor()
	server := monitoring.NewServer(config).
		WithMonitor(monitor).
		WithRoutes(self.registerRoutes)

	self.pollerProposal = NewPollerProposal(config).
		WithDB(db).
		WithMonitor(monitor).
		WithClient(client)

	self.pollerDispute = NewPollerDispute(config).
		WithDB(db).
		WithMonitor(monitor).
		WithClient(client)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithSubtask(self.pollerProposal.Task).
		WithSubtask(self.pollerDispute.Task)
	return
}

func (self *Controller) registerRoutes(router gin.IRouter) {
	router.POST("aggregate/proposal", self.onRunProposal)
	router.POST("aggregate/dispute", self.onRunDispute)
	router.GET("status", self.onGetStatus)
}

func (self *Controller) onRunProposal(c *gin.Context) {
	summary, err := self.pollerProposal.RunNow()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, &summary)
}

func (self *Controller) onRunDispute(c *gin.Context) {
	summary, err := self.pollerDispute.RunNow()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, &summary)
}

func (self *Controller) onGetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"proposal_running":       self.pollerProposal.IsRunning(),
		"dispute_running":        self.pollerDispute.IsRunning(),
		"proposal_threshold_bps": self.Config.Aggregator.ProposalThresholdBps,
		"dispute_threshold_bps":  self.Config.Aggregator.DisputeThresholdBps,
		"dispute_window":         self.Config.Aggregator.DisputeWindow.String(),
	})
}
