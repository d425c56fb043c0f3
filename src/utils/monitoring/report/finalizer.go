package report

import (
	"go.uber.org/atomic"
)

type FinalizerErrors struct {
	DbFetchErrors       atomic.Uint64 `json:"db_fetch_errors"`
	FinalizeFailures    atomic.Uint64 `json:"finalize_failures"`
	ErrorRecordFailures atomic.Uint64 `json:"error_record_failures"`
}

type FinalizerState struct {
	PassesRun         atomic.Uint64 `json:"passes_run"`
	MarketsFound      atomic.Uint64 `json:"markets_found"`
	MarketsFinalized  atomic.Uint64 `json:"markets_finalized"`
	LastPassTimestamp atomic.Int64  `json:"last_pass_timestamp"`
}

type FinalizerReport struct {
	State  FinalizerState  `json:"state"`
	Errors FinalizerErrors `json:"errors"`
}
