package monitor_syncer

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Errors
	ListenerReconnects        *prometheus.Desc
	ListenerParseErrors       *prometheus.Desc
	DecodeErrors              *prometheus.Desc
	DbRawEventInsert          *prometheus.Desc
	DbEventApply              *prometheus.Desc
	StoreSaveLastStateFailure *prometheus.Desc
	RedisPublishErrors        *prometheus.Desc
	RedisPersistentFailure    *prometheus.Desc

	// State
	NotificationsReceived         *prometheus.Desc
	EventsDecoded                 *prometheus.Desc
	EventsApplied                 *prometheus.Desc
	EventsSkippedDuplicate        *prometheus.Desc
	LastProcessedSlot             *prometheus.Desc
	AverageEventsAppliedPerMinute *prometheus.Desc
	RedisMessagesPublished        *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, nil),

		// Errors
		ListenerReconnects:        prometheus.NewDesc("listener_reconnects", "", nil, nil),
		ListenerParseErrors:       prometheus.NewDesc("listener_parse_errors", "", nil, nil),
		DecodeErrors:              prometheus.NewDesc("decode_errors", "", nil, nil),
		DbRawEventInsert:          prometheus.NewDesc("db_raw_event_insert", "", nil, nil),
		DbEventApply:              prometheus.NewDesc("db_event_apply", "", nil, nil),
		StoreSaveLastStateFailure: prometheus.NewDesc("store_save_last_state_failure", "", nil, nil),
		RedisPublishErrors:        prometheus.NewDesc("redis_publish_errors", "", nil, nil),
		RedisPersistentFailure:    prometheus.NewDesc("redis_persistent_failure", "", nil, nil),

		// State
		NotificationsReceived:         prometheus.NewDesc("notifications_received", "", nil, nil),
		EventsDecoded:                 prometheus.NewDesc("events_decoded", "", nil, nil),
		EventsApplied:                 prometheus.NewDesc("events_applied", "", nil, nil),
		EventsSkippedDuplicate:        prometheus.NewDesc("events_skipped_duplicate", "", nil, nil),
		LastProcessedSlot:             prometheus.NewDesc("last_processed_slot", "", nil, nil),
		AverageEventsAppliedPerMinute: prometheus.NewDesc("average_events_applied_per_minute", "", nil, nil),
		RedisMessagesPublished:        prometheus.NewDesc("redis_messages_published", "", nil, nil),
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
	ch <- self.ListenerReconnects
	ch <- self.ListenerParseErrors
	ch <- self.DecodeErrors
	ch <- self.DbRawEventInsert
	ch <- self.DbEventApply
	ch <- self.StoreSaveLastStateFailure
	ch <- self.RedisPublishErrors
	ch <- self.RedisPersistentFailure

	// State
	ch <- self.NotificationsReceived
	ch <- self.EventsDecoded
	ch <- self.EventsApplied
	ch <- self.EventsSkippedDuplicate
	ch <- self.LastProcessedSlot
	ch <- self.AverageEventsAppliedPerMinute
	ch <- self.RedisMessagesPublished
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	// Run
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(self.monitor.Report.Run.State.UpForSeconds.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.ListenerReconnects, prometheus.CounterValue, float64(self.monitor.Report.Syncer.Errors.ListenerReconnects.Load()))
	ch <- prometheus.MustNewConstMetric(self.ListenerParseErrors, prometheus.CounterValue, float64(self.monitor.Report.Syncer.Errors.ListenerParseErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.DecodeErrors, prometheus.CounterValue, float64(self.monitor.Report.Syncer.Errors.DecodeErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbRawEventInsert, prometheus.CounterValue, float64(self.monitor.Report.Syncer.Errors.DbRawEventInsert.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbEventApply, prometheus.CounterValue, float64(self.monitor.Report.Syncer.Errors.DbEventApply.Load()))
	ch <- prometheus.MustNewConstMetric(self.StoreSaveLastStateFailure, prometheus.CounterValue, float64(self.monitor.Report.Syncer.Errors.StoreSaveLastStateFailure.Load()))
	ch <- prometheus.MustNewConstMetric(self.RedisPublishErrors, prometheus.CounterValue, float64(self.monitor.Report.RedisPublisher.Errors.Publish.Load()))
	ch <- prometheus.MustNewConstMetric(self.RedisPersistentFailure, prometheus.CounterValue, float64(self.monitor.Report.RedisPublisher.Errors.PersistentFailure.Load()))

	// State
	ch <- prometheus.MustNewConstMetric(self.NotificationsReceived, prometheus.CounterValue, float64(self.monitor.Report.Syncer.State.NotificationsReceived.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsDecoded, prometheus.CounterValue, float64(self.monitor.Report.Syncer.State.EventsDecoded.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsApplied, prometheus.CounterValue, float64(self.monitor.Report.Syncer.State.EventsApplied.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsSkippedDuplicate, prometheus.CounterValue, float64(self.monitor.Report.Syncer.State.EventsSkippedDuplicate.Load()))
	ch <- prometheus.MustNewConstMetric(self.LastProcessedSlot, prometheus.GaugeValue, float64(self.monitor.Report.Syncer.State.LastProcessedSlot.Load()))
	ch <- prometheus.MustNewConstMetric(self.AverageEventsAppliedPerMinute, prometheus.GaugeValue, self.monitor.Report.Syncer.State.AverageEventsAppliedPerMinute.Load())
	ch <- prometheus.MustNewConstMetric(self.RedisMessagesPublished, prometheus.CounterValue, float64(self.monitor.Report.RedisPublisher.State.MessagesPublished.Load()))
}
