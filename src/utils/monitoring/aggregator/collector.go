package monitor_aggregator

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Errors
	ProposalPassFailures *prometheus.Desc
	DisputePassFailures  *prometheus.Desc
	DbFetchErrors        *prometheus.Desc
	SubmitErrors         *prometheus.Desc

	// State
	ProposalPassesRun *prometheus.Desc
	DisputePassesRun  *prometheus.Desc
	MarketsScanned    *prometheus.Desc
	MarketsApproved   *prometheus.Desc
	DisputesDecided   *prometheus.Desc
	LastPassTimestamp *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, nil),

		// Errors
		ProposalPassFailures: prometheus.NewDesc("proposal_pass_failures", "", nil, nil),
		DisputePassFailures:  prometheus.NewDesc("dispute_pass_failures", "", nil, nil),
		DbFetchErrors:        prometheus.NewDesc("db_fetch_errors", "", nil, nil),
		SubmitErrors:         prometheus.NewDesc("submit_errors", "", nil, nil),

		// State
		ProposalPassesRun: prometheus.NewDesc("proposal_passes_run", "", nil, nil),
		DisputePassesRun:  prometheus.NewDesc("dispute_passes_run", "", nil, nil),
		MarketsScanned:    prometheus.NewDesc("markets_scanned", "", nil, nil),
		MarketsApproved:   prometheus.NewDesc("markets_approved", "", nil, nil),
		DisputesDecided:   prometheus.NewDesc("disputes_decided", "", nil, nil),
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
	ch <- self.ProposalPassFailures
	ch <- self.DisputePassFailures
	ch <- self.DbFetchErrors
	ch <- self.SubmitErrors

	// State
	ch <- self.ProposalPassesRun
	ch <- self.DisputePassesRun
	ch <- self.MarketsScanned
	ch <- self.MarketsApproved
	ch <- self.DisputesDecided
	ch <- self.LastPassTimestamp
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	// Run
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(self.monitor.Report.Run.State.UpForSeconds.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.ProposalPassFailures, prometheus.CounterValue, float64(self.monitor.Report.Aggregator.Errors.ProposalPassFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.DisputePassFailures, prometheus.CounterValue, float64(self.monitor.Report.Aggregator.Errors.DisputePassFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbFetchErrors, prometheus.CounterValue, float64(self.monitor.Report.Aggregator.Errors.DbFetchErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.SubmitErrors, prometheus.CounterValue, float64(self.monitor.Report.Aggregator.Errors.SubmitErrors.Load()))

	// State
	ch <- prometheus.MustNewConstMetric(self.ProposalPassesRun, prometheus.CounterValue, float64(self.monitor.Report.Aggregator.State.ProposalPassesRun.Load()))
	ch <- prometheus.MustNewConstMetric(self.DisputePassesRun, prometheus.CounterValue, float64(self.monitor.Report.Aggregator.State.DisputePassesRun.Load()))
	ch <- prometheus.MustNewConstMetric(self.MarketsScanned, prometheus.CounterValue, float64(self.monitor.Report.Aggregator.State.MarketsScanned.Load()))
	ch <- prometheus.MustNewConstMetric(self.MarketsApproved, prometheus.CounterValue, float64(self.monitor.Report.Aggregator.State.MarketsApproved.Load()))
	ch <- prometheus.MustNewConstMetric(self.DisputesDecided, prometheus.CounterValue, float64(self.monitor.Report.Aggregator.State.DisputesDecided.Load()))
	ch <- prometheus.MustNewConstMetric(self.LastPassTimestamp, prometheus.GaugeValue, float64(self.monitor.Report.Aggregator.State.LastPassTimestamp.Load()))
}
