package ledger

// Event payload discriminators, first byte of instruction data
const (
	DiscriminatorMarketCreated    byte = 0
	DiscriminatorTradeExecuted    byte = 1
	DiscriminatorProposalApproved byte = 2
	DiscriminatorMarketResolved   byte = 3
	DiscriminatorDisputeRaised    byte = 4
	DiscriminatorDisputeResolved  byte = 5
	DiscriminatorVoteRecorded     byte = 6
	DiscriminatorWinningsClaimed  byte = 7
)

const (
	EventTypeMarketCreated    = "market_created"
	EventTypeTradeExecuted    = "trade_executed"
	EventTypeProposalApproved = "proposal_approved"
	EventTypeMarketResolved   = "market_resolved"
	EventTypeDisputeRaised    = "dispute_raised"
	EventTypeDisputeResolved  = "dispute_resolved"
	EventTypeVoteRecorded     = "vote_recorded"
	EventTypeWinningsClaimed  = "winnings_claimed"
)

// Vote kinds carried by VoteRecorded
const (
	VoteKindProposal byte = 0
	VoteKindDispute  byte = 1
)

type Event interface {
	// Type returns the event type stored in raw_events.event_type
	Type() string

	// Market returns the hex encoded id of the market the event belongs to
	Market() string
}

type MarketCreated struct {
	MarketId  string `json:"market_id"`
	Creator   string `json:"creator"`
	Question  string `json:"question"`
	CreatedAt int64  `json:"created_at"`
}

func (e *MarketCreated) Type() string   { return EventTypeMarketCreated }
func (e *MarketCreated) Market() string { return e.MarketId }

type TradeExecuted struct {
	MarketId string `json:"market_id"`
	User     string `json:"user"`

	// true buys/sells YES shares, false NO shares
	Outcome bool `json:"outcome"`
	IsBuy   bool `json:"is_buy"`

	Shares uint64 `json:"shares"`

	// Cost for buys, proceeds for sells, in base units
	Amount uint64 `json:"amount"`

	// Pool snapshot after the trade
	NewSharesYes uint64 `json:"new_shares_yes"`
	NewSharesNo  uint64 `json:"new_shares_no"`
	NewLiquidity uint64 `json:"new_liquidity"`

	Timestamp int64 `json:"timestamp"`
}

func (e *TradeExecuted) Type() string   { return EventTypeTradeExecuted }
func (e *TradeExecuted) Market() string { return e.MarketId }

type ProposalApproved struct {
	MarketId  string `json:"market_id"`
	Likes     uint32 `json:"likes"`
	Dislikes  uint32 `json:"dislikes"`
	Timestamp int64  `json:"timestamp"`
}

func (e *ProposalApproved) Type() string   { return EventTypeProposalApproved }
func (e *ProposalApproved) Market() string { return e.MarketId }

// MarketResolved means a resolution got proposed, not finalized
type MarketResolved struct {
	MarketId        string `json:"market_id"`
	Resolver        string `json:"resolver"`
	ProposedOutcome bool   `json:"proposed_outcome"`
	Timestamp       int64  `json:"timestamp"`
}

func (e *MarketResolved) Type() string   { return EventTypeMarketResolved }
func (e *MarketResolved) Market() string { return e.MarketId }

type DisputeRaised struct {
	MarketId        string `json:"market_id"`
	Initiator       string `json:"initiator"`
	DisputedOutcome bool   `json:"disputed_outcome"`
	Timestamp       int64  `json:"timestamp"`
}

func (e *DisputeRaised) Type() string   { return EventTypeDisputeRaised }
func (e *DisputeRaised) Market() string { return e.MarketId }

// DisputeResolved carries the terminal outcome after the dispute window
type DisputeResolved struct {
	MarketId     string `json:"market_id"`
	Agrees       uint32 `json:"agrees"`
	Disagrees    uint32 `json:"disagrees"`
	Succeeded    bool   `json:"succeeded"`
	FinalOutcome bool   `json:"final_outcome"`
	Timestamp    int64  `json:"timestamp"`
}

func (e *DisputeResolved) Type() string   { return EventTypeDisputeResolved }
func (e *DisputeResolved) Market() string { return e.MarketId }

type VoteRecorded struct {
	MarketId string `json:"market_id"`
	Voter    string `json:"voter"`

	// VoteKindProposal or VoteKindDispute
	Kind byte `json:"kind"`

	Choice    bool  `json:"choice"`
	Timestamp int64 `json:"timestamp"`
}

func (e *VoteRecorded) Type() string   { return EventTypeVoteRecorded }
func (e *VoteRecorded) Market() string { return e.MarketId }

type WinningsClaimed struct {
	MarketId  string `json:"market_id"`
	User      string `json:"user"`
	Amount    uint64 `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

func (e *WinningsClaimed) Type() string   { return EventTypeWinningsClaimed }
func (e *WinningsClaimed) Market() string { return e.MarketId }
