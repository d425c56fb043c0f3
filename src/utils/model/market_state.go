package model

// Market lifecycle states, numeric values match the on-ledger program.
//
// Proposed → Approved → Active → Resolving → Finalized
//                                Resolving → Disputed → Finalized
// Proposed/Approved → Cancelled (admin only)
type MarketState int16

const (
	MarketStateProposed  MarketState = 0
	MarketStateApproved  MarketState = 1
	MarketStateActive    MarketState = 2
	MarketStateResolving MarketState = 3
	MarketStateDisputed  MarketState = 4
	MarketStateFinalized MarketState = 5
	MarketStateCancelled MarketState = 6
)

func (s MarketState) String() string {
	switch s {
	case MarketStateProposed:
		return "Proposed"
	case MarketStateApproved:
		return "Approved"
	case MarketStateActive:
		return "Active"
	case MarketStateResolving:
		return "Resolving"
	case MarketStateDisputed:
		return "Disputed"
	case MarketStateFinalized:
		return "Finalized"
	case MarketStateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// States only move forward, disputes are a side branch out of Resolving,
// not a way back into it.
func (s MarketState) CanTransitionTo(next MarketState) bool {
	switch {
	case s == MarketStateProposed && next == MarketStateApproved:
		return true
	case s == MarketStateApproved && next == MarketStateActive:
		return true
	case s == MarketStateActive && next == MarketStateResolving:
		return true
	case s == MarketStateResolving && next == MarketStateDisputed:
		return true
	case s == MarketStateResolving && next == MarketStateFinalized:
		return true
	case s == MarketStateDisputed && next == MarketStateFinalized:
		return true
	case (s == MarketStateProposed || s == MarketStateApproved) && next == MarketStateCancelled:
		return true
	default:
		return false
	}
}
