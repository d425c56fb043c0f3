package monitoring

import (
	"github.com/0xBased-lang/zmart-syncer/src/utils/monitoring/report"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor is implemented by per-feature monitors that store counters and
// expose them over REST and Prometheus
type Monitor interface {
	GetReport() *report.Report
	GetPrometheusCollector() prometheus.Collector
	IsOK() bool
	OnGetState(c *gin.Context)
	OnGetHealth(c *gin.Context)
}
