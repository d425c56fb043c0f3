package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TallyTestSuite struct {
	suite.Suite
}

func TestTallyTestSuite(t *testing.T) {
	suite.Run(t, new(TallyTestSuite))
}

func (s *TallyTestSuite) TestZeroVotesNeverMeetThreshold() {
	tally := Tally{}
	require.EqualValues(s.T(), 0, tally.RateBasisPoints())
	require.False(s.T(), tally.MeetsThreshold(7000))
	require.False(s.T(), tally.MeetsThreshold(0))
}

func (s *TallyTestSuite) TestBasisPointsAreFloored() {
	// 6999.xx bp must stay below a 7000 bp threshold
	tally := Tally{Positive: 6999, Negative: 3001}
	require.EqualValues(s.T(), 6999, tally.RateBasisPoints())
	require.False(s.T(), tally.MeetsThreshold(7000))

	tally = Tally{Positive: 7000, Negative: 3000}
	require.EqualValues(s.T(), 7000, tally.RateBasisPoints())
	require.True(s.T(), tally.MeetsThreshold(7000))
}

func (s *TallyTestSuite) TestSeventyPercentApproval() {
	tally := Tally{Positive: 7, Negative: 3}
	require.EqualValues(s.T(), 10, tally.Total())
	require.EqualValues(s.T(), 7000, tally.RateBasisPoints())
	require.True(s.T(), tally.MeetsThreshold(7000))
}

func (s *TallyTestSuite) TestFortyPercentDisputeFails() {
	tally := Tally{Positive: 4, Negative: 6}
	require.EqualValues(s.T(), 4000, tally.RateBasisPoints())
	require.False(s.T(), tally.MeetsThreshold(6000))
}

func (s *TallyTestSuite) TestTwoThirdsIsFlooredNotRounded() {
	tally := Tally{Positive: 2, Negative: 1}
	require.EqualValues(s.T(), 6666, tally.RateBasisPoints())
	require.True(s.T(), tally.MeetsThreshold(6000))
	require.False(s.T(), tally.MeetsThreshold(6667))
}

func (s *TallyTestSuite) TestFinalOutcomeFlipsOnSuccessfulDispute() {
	yes := true
	no := false

	out := FinalOutcome(&yes, true)
	require.NotNil(s.T(), out)
	require.False(s.T(), *out)

	out = FinalOutcome(&no, true)
	require.NotNil(s.T(), out)
	require.True(s.T(), *out)
}

func (s *TallyTestSuite) TestFinalOutcomeKeptOnFailedDispute() {
	yes := true

	out := FinalOutcome(&yes, false)
	require.NotNil(s.T(), out)
	require.True(s.T(), *out)
}

func (s *TallyTestSuite) TestFinalOutcomeNilStaysNil() {
	require.Nil(s.T(), FinalOutcome(nil, true))
	require.Nil(s.T(), FinalOutcome(nil, false))
}
