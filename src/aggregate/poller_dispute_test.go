package aggregate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/0xBased-lang/zmart-syncer/src/utils/config"
	"github.com/0xBased-lang/zmart-syncer/src/utils/ledger"
	"github.com/0xBased-lang/zmart-syncer/src/utils/model"
	monitor_aggregator "github.com/0xBased-lang/zmart-syncer/src/utils/monitoring/aggregator"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testSchema = []string{
	`CREATE TABLE markets (
		market_id TEXT PRIMARY KEY,
		address TEXT NOT NULL DEFAULT '',
		creator TEXT NOT NULL DEFAULT '',
		question TEXT NOT NULL DEFAULT '',
		state INTEGER NOT NULL DEFAULT 0,
		proposed_outcome BOOLEAN,
		final_outcome BOOLEAN,
		proposal_likes INTEGER NOT NULL DEFAULT 0,
		proposal_dislikes INTEGER NOT NULL DEFAULT 0,
		proposal_total_votes INTEGER NOT NULL DEFAULT 0,
		dispute_agree INTEGER NOT NULL DEFAULT 0,
		dispute_disagree INTEGER NOT NULL DEFAULT 0,
		dispute_total_votes INTEGER NOT NULL DEFAULT 0,
		was_disputed BOOLEAN NOT NULL DEFAULT FALSE,
		shares_yes INTEGER NOT NULL DEFAULT 0,
		shares_no INTEGER NOT NULL DEFAULT 0,
		total_volume INTEGER NOT NULL DEFAULT 0,
		current_liquidity INTEGER NOT NULL DEFAULT 0,
		total_claimed INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT 0,
		approved_at INTEGER NOT NULL DEFAULT 0,
		resolution_proposed_at INTEGER NOT NULL DEFAULT 0,
		finalized_at INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE votes (
		market_id TEXT NOT NULL,
		voter TEXT NOT NULL,
		kind TEXT NOT NULL,
		choice BOOLEAN NOT NULL,
		voted_at INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (market_id, voter, kind)
	)`,
}

// Stand-in for the transaction gateway, confirms every submission
type gatewayStub struct {
	server  *httptest.Server
	Submits atomic.Int64
}

func newGatewayStub() *gatewayStub {
	self := new(gatewayStub)
	self.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			Method string `json:"method"`
			Params struct {
				MarketId string `json:"market_id"`
			} `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch request.Method {
		case "getMarketAddress":
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":"addr-%s"}`, request.Params.MarketId)
		case "submitAndConfirm":
			self.Submits.Inc()
			fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"signature":"test-sig","confirmed":true}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return self
}

func (self *gatewayStub) Close() {
	self.server.Close()
}

type PollerDisputeTestSuite struct {
	suite.Suite
	config  *config.Config
	db      *gorm.DB
	gateway *gatewayStub
	poller  *PollerDispute
}

func TestPollerDisputeTestSuite(t *testing.T) {
	suite.Run(t, new(PollerDisputeTestSuite))
}

func (s *PollerDisputeTestSuite) SetupTest() {
	s.gateway = newGatewayStub()

	s.config = config.Default()
	s.config.Aggregator.DisputeWindow = time.Minute
	s.config.Ledger.GatewayUrl = s.gateway.server.URL
	s.config.Ledger.RequestsPerSecond = 1000

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(s.T(), err)
	for _, stmt := range testSchema {
		require.NoError(s.T(), db.Exec(stmt).Error)
	}
	s.db = db

	s.poller = NewPollerDispute(s.config).
		WithDB(db).
		WithMonitor(monitor_aggregator.NewMonitor()).
		WithClient(ledger.NewClient(s.config))
}

func (s *PollerDisputeTestSuite) TearDownTest() {
	s.gateway.Close()
}

func (s *PollerDisputeTestSuite) createDisputedMarket(marketId string, resolutionProposedAt int64) {
	proposed := true
	require.NoError(s.T(), s.db.Create(&model.Market{
		MarketId:             marketId,
		State:                model.MarketStateDisputed,
		ProposedOutcome:      &proposed,
		WasDisputed:          true,
		ResolutionProposedAt: resolutionProposedAt,
	}).Error)
}

func (s *PollerDisputeTestSuite) createDisputeVotes(marketId string, agree, disagree int) {
	for i := 0; i < agree; i++ {
		require.NoError(s.T(), s.db.Create(&model.Vote{
			MarketId: marketId,
			Voter:    fmt.Sprintf("agree-%d", i),
			Kind:     model.VoteKindDispute,
			Choice:   true,
		}).Error)
	}
	for i := 0; i < disagree; i++ {
		require.NoError(s.T(), s.db.Create(&model.Vote{
			MarketId: marketId,
			Voter:    fmt.Sprintf("disagree-%d", i),
			Kind:     model.VoteKindDispute,
			Choice:   false,
		}).Error)
	}
}

func (s *PollerDisputeTestSuite) TestOpenWindowBlocksLedgerWrite() {
	// Window just opened, the tally is far above threshold and still must
	// not be submitted
	s.createDisputedMarket("m1", time.Now().Unix())
	s.createDisputeVotes("m1", 9, 1)

	summary, err := s.poller.RunNow()
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, summary.Scanned)
	require.Equal(s.T(), 0, summary.Decided)
	require.Equal(s.T(), 0, summary.Errored)
	require.EqualValues(s.T(), 0, s.gateway.Submits.Load())

	var market model.Market
	require.NoError(s.T(), s.db.First(&market, "market_id = ?", "m1").Error)
	require.Equal(s.T(), model.MarketStateDisputed, market.State)
	require.Nil(s.T(), market.FinalOutcome)

	// The snapshot is refreshed for status readers
	require.EqualValues(s.T(), 9, market.DisputeAgree)
	require.EqualValues(s.T(), 1, market.DisputeDisagree)
}

func (s *PollerDisputeTestSuite) TestElapsedWindowSubmitsAndFlipsOutcome() {
	s.createDisputedMarket("m1", time.Now().Add(-time.Hour).Unix())
	s.createDisputeVotes("m1", 9, 1)

	summary, err := s.poller.RunNow()
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, summary.Scanned)
	require.Equal(s.T(), 1, summary.Decided)
	require.EqualValues(s.T(), 1, s.gateway.Submits.Load())

	var market model.Market
	require.NoError(s.T(), s.db.First(&market, "market_id = ?", "m1").Error)
	require.Equal(s.T(), model.MarketStateFinalized, market.State)
	require.NotNil(s.T(), market.FinalOutcome)
	require.False(s.T(), *market.FinalOutcome)
	require.NotZero(s.T(), market.FinalizedAt)
}

func (s *PollerDisputeTestSuite) TestFailedDisputeKeepsProposedOutcome() {
	s.createDisputedMarket("m1", time.Now().Add(-time.Hour).Unix())
	s.createDisputeVotes("m1", 4, 6)

	summary, err := s.poller.RunNow()
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, summary.Decided)

	var market model.Market
	require.NoError(s.T(), s.db.First(&market, "market_id = ?", "m1").Error)
	require.Equal(s.T(), model.MarketStateFinalized, market.State)
	require.NotNil(s.T(), market.FinalOutcome)
	require.True(s.T(), *market.FinalOutcome)
}
