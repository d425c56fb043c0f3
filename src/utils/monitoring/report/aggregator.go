package report

import (
	"go.uber.org/atomic"
)

type AggregatorErrors struct {
	ProposalPassFailures atomic.Uint64 `json:"proposal_pass_failures"`
	DisputePassFailures  atomic.Uint64 `json:"dispute_pass_failures"`
	DbFetchErrors        atomic.Uint64 `json:"db_fetch_errors"`
	SubmitErrors         atomic.Uint64 `json:"submit_errors"`
}

type AggregatorState struct {
	ProposalPassesRun atomic.Uint64 `json:"proposal_passes_run"`
	DisputePassesRun  atomic.Uint64 `json:"dispute_passes_run"`
	MarketsScanned    atomic.Uint64 `json:"markets_scanned"`
	MarketsApproved   atomic.Uint64 `json:"markets_approved"`
	DisputesDecided   atomic.Uint64 `json:"disputes_decided"`
	LastPassTimestamp atomic.Int64  `json:"last_pass_timestamp"`
}

type AggregatorReport struct {
	State  AggregatorState  `json:"state"`
	Errors AggregatorErrors `json:"errors"`
}
