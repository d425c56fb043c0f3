package model

const TableVotes = "votes"

type VoteKind string

const (
	VoteKindProposal VoteKind = "proposal"
	VoteKindDispute  VoteKind = "dispute"
)

// One vote per (market, voter, kind), enforced by the composite primary key.
// A duplicate insert is a domain no-op, not a crash.
type Vote struct {
	MarketId string   `gorm:"primaryKey" json:"market_id"`
	Voter    string   `gorm:"primaryKey" json:"voter"`
	Kind     VoteKind `gorm:"primaryKey" json:"kind"`

	Choice  bool  `json:"choice"`
	VotedAt int64 `json:"voted_at"`
}

func (Vote) TableName() string {
	return TableVotes
}
