package monitor_finalizer

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Errors
	DbFetchErrors       *prometheus.Desc
	FinalizeFailures    *prometheus.Desc
	ErrorRecordFailures *prometheus.Desc

	// State
	PassesRun         *prometheus.Desc
	MarketsFound      *prometheus.Desc
	MarketsFinalized  *prometheus.Desc
	LastPassTimestamp *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, nil),

		// Errors
		DbFetchErrors:       prometheus.NewDesc("db_fetch_errors", "", nil, nil),
		FinalizeFailures:    prometheus.NewDesc("finalize_failures", "", nil, nil),
		ErrorRecordFailures: prometheus.NewDesc("error_record_failures", "", nil, nil),

		// State
		PassesRun:         prometheus.NewDesc("passes_run", "", nil, nil),
		MarketsFound:      prometheus.NewDesc("markets_found", "", nil, nil),
		MarketsFinalized:  prometheus.NewDesc("markets_finalized", "", nil, nil),
		LastPassTimestamp: prometheus.NewDesc("last_pass_timestamp", "", nil, nil),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Run
	ch <- self.UpForSeconds

	// Errors
	ch <- self.DbFetchErrors
	ch <- self.FinalizeFailures
	ch <- self.ErrorRecordFailures

	// State
	ch <- self.PassesRun
	ch <- self.MarketsFound
	ch <- self.MarketsFinalized
	ch <- self.LastPassTimestamp
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	// Run
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(self.monitor.Report.Run.State.UpForSeconds.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.DbFetchErrors, prometheus.CounterValue, float64(self.monitor.Report.Finalizer.Errors.DbFetchErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.FinalizeFailures, prometheus.CounterValue, float64(self.monitor.Report.Finalizer.Errors.FinalizeFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ErrorRecordFailures, prometheus.CounterValue, float64(self.monitor.Report.Finalizer.Errors.ErrorRecordFailures.Load()))

	// State
	ch <- prometheus.MustNewConstMetric(self.PassesRun, prometheus.CounterValue, float64(self.monitor.Report.Finalizer.State.PassesRun.Load()))
	ch <- prometheus.MustNewConstMetric(self.MarketsFound, prometheus.CounterValue, float64(self.monitor.Report.Finalizer.State.MarketsFound.Load()))
	ch <- prometheus.MustNewConstMetric(self.MarketsFinalized, prometheus.CounterValue, float64(self.monitor.Report.Finalizer.State.MarketsFinalized.Load()))
	ch <- prometheus.MustNewConstMetric(self.LastPassTimestamp, prometheus.GaugeValue, float64(self.monitor.Report.Finalizer.State.LastPassTimestamp.Load()))
}
