package monitor_syncer

import (
	"math"
	"net/http"
	"time"

	"github.com/0xBased-lang/zmart-syncer/src/utils/monitoring/report"
	"github.com/0xBased-lang/zmart-syncer/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Event processing speed
	EventsApplied *deque.Deque[uint64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:            &report.RunReport{},
		Syncer:         &report.SyncerReport{},
		RedisPublisher: &report.RedisPublisherReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorEvents)
	return
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize
	self.EventsApplied = deque.New[uint64](self.historySize)
	return self
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Measure event processing speed
func (self *Monitor) monitorEvents() (err error) {
	loaded := self.Report.Syncer.State.EventsApplied.Load()
	if loaded == 0 {
		// Neglect the first 0
		return
	}

	self.EventsApplied.PushBack(loaded)
	if self.EventsApplied.Len() > self.historySize {
		self.EventsApplied.PopFront()
	}
	value := float64(self.EventsApplied.Back()-self.EventsApplied.Front()) / float64(self.EventsApplied.Len())

	self.Report.Syncer.State.AverageEventsAppliedPerMinute.Store(round(value))
	return
}

// A quiet program is not an unhealthy one, the feed may simply carry no
// transactions. Health only turns bad when writes to the replica keep
// failing.
func (self *Monitor) IsOK() bool {
	now := time.Now().Unix()
	if now-self.Report.Run.State.StartTimestamp.Load() < 300 {
		return true
	}

	applied := self.Report.Syncer.State.EventsApplied.Load()
	failed := self.Report.Syncer.Errors.DbEventApply.Load()
	return failed == 0 || applied > 0
}

func (self *Monitor) OnGetState(c *gin.Context) {
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()))

	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
