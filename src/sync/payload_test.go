package sync

import (
	"testing"

	"github.com/0xBased-lang/zmart-syncer/src/utils/ledger"
	"github.com/0xBased-lang/zmart-syncer/src/utils/model"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PayloadTestSuite struct {
	suite.Suite
}

func TestPayloadTestSuite(t *testing.T) {
	suite.Run(t, new(PayloadTestSuite))
}

func (s *PayloadTestSuite) TestMarketUpdateCarriesState() {
	state := model.MarketStateActive
	update := &MarketUpdate{
		MarketId:  "m1",
		EventType: ledger.EventTypeTradeExecuted,
		State:     &state,
		Slot:      10,
		BlockTime: 1700000000,
	}

	data, err := update.MarshalBinary()
	require.NoError(s.T(), err)
	require.Contains(s.T(), string(data), `"state":2`)
}

func (s *PayloadTestSuite) TestMarketUpdateOmitsUnknownState() {
	update := &MarketUpdate{
		MarketId:  "m1",
		EventType: ledger.EventTypeTradeExecuted,
		Slot:      10,
		BlockTime: 1700000000,
	}

	data, err := update.MarshalBinary()
	require.NoError(s.T(), err)
	require.NotContains(s.T(), string(data), `"state"`)
}
