package model

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MarketStateTestSuite struct {
	suite.Suite
}

func TestMarketStateTestSuite(t *testing.T) {
	suite.Run(t, new(MarketStateTestSuite))
}

func (s *MarketStateTestSuite) TestHappyPath() {
	require.True(s.T(), MarketStateProposed.CanTransitionTo(MarketStateApproved))
	require.True(s.T(), MarketStateApproved.CanTransitionTo(MarketStateActive))
	require.True(s.T(), MarketStateActive.CanTransitionTo(MarketStateResolving))
	require.True(s.T(), MarketStateResolving.CanTransitionTo(MarketStateFinalized))
}

func (s *MarketStateTestSuite) TestDisputeBranch() {
	require.True(s.T(), MarketStateResolving.CanTransitionTo(MarketStateDisputed))
	require.True(s.T(), MarketStateDisputed.CanTransitionTo(MarketStateFinalized))

	// A dispute never reopens resolution
	require.False(s.T(), MarketStateDisputed.CanTransitionTo(MarketStateResolving))
}

func (s *MarketStateTestSuite) TestCancellation() {
	require.True(s.T(), MarketStateProposed.CanTransitionTo(MarketStateCancelled))
	require.True(s.T(), MarketStateApproved.CanTransitionTo(MarketStateCancelled))

	// Trading started, cancellation is off the table
	require.False(s.T(), MarketStateActive.CanTransitionTo(MarketStateCancelled))
	require.False(s.T(), MarketStateResolving.CanTransitionTo(MarketStateCancelled))
}

func (s *MarketStateTestSuite) TestNoBackwardTransitions() {
	states := []MarketState{
		MarketStateProposed,
		MarketStateApproved,
		MarketStateActive,
		MarketStateResolving,
		MarketStateDisputed,
	}
	for i, later := range states {
		for _, earlier := range states[:i] {
			require.False(s.T(), later.CanTransitionTo(earlier),
				"%s -> %s must not be allowed", later, earlier)
		}
	}
}

func (s *MarketStateTestSuite) TestTerminalStates() {
	all := []MarketState{
		MarketStateProposed,
		MarketStateApproved,
		MarketStateActive,
		MarketStateResolving,
		MarketStateDisputed,
		MarketStateFinalized,
		MarketStateCancelled,
	}
	for _, next := range all {
		require.False(s.T(), MarketStateFinalized.CanTransitionTo(next))
		require.False(s.T(), MarketStateCancelled.CanTransitionTo(next))
	}
}

func (s *MarketStateTestSuite) TestString() {
	require.Equal(s.T(), "Proposed", MarketStateProposed.String())
	require.Equal(s.T(), "Finalized", MarketStateFinalized.String())
	require.Equal(s.T(), "Unknown", MarketState(42).String())
}
