package aggregate

import (
	"github.com/0xBased-lang/zmart-syncer/src/utils/model"

	"gorm.io/gorm"
)

// Tally counts votes of one kind for one market
type Tally struct {
	Positive int64 `json:"positive"`
	Negative int64 `json:"negative"`
}

func (self Tally) Total() int64 {
	return self.Positive + self.Negative
}

// RateBasisPoints is the positive share floored to basis points. Integer
// arithmetic on purpose, threshold comparisons must not depend on float
// rounding.
func (self Tally) RateBasisPoints() int64 {
	total := self.Total()
	if total == 0 {
		return 0
	}
	return self.Positive * 10000 / total
}

// MeetsThreshold is false on zero votes regardless of the threshold,
// silence never approves anything
func (self Tally) MeetsThreshold(thresholdBps int64) bool {
	if self.Total() == 0 {
		return false
	}
	return self.RateBasisPoints() >= thresholdBps
}

// FinalOutcome applies the dispute decision to the proposed outcome. A
// successful dispute flips it, a failed one keeps it. A nil proposed
// outcome means the resolution was invalid and stays that way.
func FinalOutcome(proposed *bool, disputeSucceeded bool) *bool {
	if !disputeSucceeded || proposed == nil {
		return proposed
	}
	flipped := !*proposed
	return &flipped
}

// Summary describes one aggregation pass
type Summary struct {
	Scanned int `json:"scanned"`
	Decided int `json:"decided"`
	Errored int `json:"errored"`
}

func tallyVotes(db *gorm.DB, marketId string, kind model.VoteKind) (tally Tally, err error) {
	type countRow struct {
		Choice bool
		Count  int64
	}

	var rows []countRow
	err = db.Model(&model.Vote{}).
		Select("choice, count(*) as count").
		Where("market_id = ? AND kind = ?", marketId, kind).
		Group("choice").
		Find(&rows).
		Error
	if err != nil {
		return
	}

	for _, row := range rows {
		if row.Choice {
			tally.Positive = row.Count
		} else {
			tally.Negative = row.Count
		}
	}
	return
}
