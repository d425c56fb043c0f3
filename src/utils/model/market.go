package model

const TableMarkets = "markets"

// Off-chain replica of one market account. Authoritative data lives on the
// ledger; rows here are read models reconciled by ingested events.
type Market struct {
	// Hex encoded 32-byte market id
	MarketId string `gorm:"primaryKey" json:"market_id"`

	// On-ledger account address
	Address string `json:"address"`

	Creator  string      `json:"creator"`
	Question string      `json:"question"`
	State    MarketState `json:"state"`

	// nil until a resolution is proposed, nil also means "invalid" outcome
	ProposedOutcome *bool `json:"proposed_outcome"`

	// Set if and only if State is Finalized
	FinalOutcome *bool `json:"final_outcome"`

	// Vote count snapshots recorded by the aggregation passes and
	// overwritten by ingested ledger events
	ProposalLikes      int64 `json:"proposal_likes"`
	ProposalDislikes   int64 `json:"proposal_dislikes"`
	ProposalTotalVotes int64 `json:"proposal_total_votes"`
	DisputeAgree       int64 `json:"dispute_agree"`
	DisputeDisagree    int64 `json:"dispute_disagree"`
	DisputeTotalVotes  int64 `json:"dispute_total_votes"`
	WasDisputed        bool  `json:"was_disputed"`

	// Trading snapshot kept by the trade-executed ingestion path
	SharesYes        uint64 `json:"shares_yes"`
	SharesNo         uint64 `json:"shares_no"`
	TotalVolume      uint64 `json:"total_volume"`
	CurrentLiquidity uint64 `json:"current_liquidity"`
	TotalClaimed     uint64 `json:"total_claimed"`

	// Unix seconds, ledger time
	CreatedAt            int64 `json:"created_at"`
	ApprovedAt           int64 `json:"approved_at"`
	ResolutionProposedAt int64 `json:"resolution_proposed_at"`
	FinalizedAt          int64 `json:"finalized_at"`
}

func (Market) TableName() string {
	return TableMarkets
}
