package report

type Report struct {
	Run            *RunReport            `json:"run,omitempty"`
	Syncer         *SyncerReport         `json:"syncer,omitempty"`
	Aggregator     *AggregatorReport     `json:"aggregator,omitempty"`
	Finalizer      *FinalizerReport      `json:"finalizer,omitempty"`
	RedisPublisher *RedisPublisherReport `json:"redis_publisher,omitempty"`
}
