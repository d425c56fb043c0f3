package finalize

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
	monitor_finalizer "github.com/0xBased-lang/zmart-syncer/src/utils/monitoring/finalizer"

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
	`CREATE TABLE finalization_errors (
		id TEXT PRIMARY KEY,
		market_id TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		attempts INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT 0,
		resolved_at INTEGER,
		resolution_notes TEXT NOT NULL DEFAULT ''
	)`,
}

// Stand-in for the transaction gateway. Submissions whose first account is
// listed in failing come back unconfirmed.
type gatewayStub struct {
	server  *httptest.Server
	failing map[string]bool
	Submits atomic.Int64
}

func newGatewayStub(failing ...string) *gatewayStub {
	self := new(gatewayStub)
	self.failing = make(map[string]bool)
	for _, address := range failing {
		self.failing[address] = true
	}

	self.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			Method string `json:"method"`
			Params struct {
				MarketId string   `json:"market_id"`
				Accounts []string `json:"accounts"`
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
			confirmed := len(request.Params.Accounts) == 0 || !self.failing[request.Params.Accounts[0]]
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":{"signature":"test-sig","confirmed":%t}}`, confirmed)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return self
}

func (self *gatewayStub) Close() {
	self.server.Close()
}

type PollerTestSuite struct {
	suite.Suite
	config  *config.Config
	db      *gorm.DB
	gateway *gatewayStub
}

func TestPollerTestSuite(t *testing.T) {
	suite.Run(t, new(PollerTestSuite))
}

func (s *PollerTestSuite) SetupTest() {
	s.config = config.Default()
	s.config.Aggregator.DisputeWindow = time.Second
	s.config.Finalizer.SafetyBuffer = time.Second
	s.config.Ledger.RequestsPerSecond = 1000

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(s.T(), err)
	for _, stmt := range testSchema {
		require.NoError(s.T(), db.Exec(stmt).Error)
	}
	s.db = db
}

func (s *PollerTestSuite) newPoller(gateway *gatewayStub) *Poller {
	s.gateway = gateway
	s.config.Ledger.GatewayUrl = gateway.server.URL
	return NewPoller(s.config).
		WithDB(s.db).
		WithMonitor(monitor_finalizer.NewMonitor()).
		WithClient(ledger.NewClient(s.config))
}

func (s *PollerTestSuite) TearDownTest() {
	if s.gateway != nil {
		s.gateway.Close()
	}
}

func (s *PollerTestSuite) createResolvingMarket(marketId string, resolutionProposedAt int64) {
	proposed := true
	require.NoError(s.T(), s.db.Create(&model.Market{
		MarketId:             marketId,
		State:                model.MarketStateResolving,
		ProposedOutcome:      &proposed,
		ResolutionProposedAt: resolutionProposedAt,
	}).Error)
}

func (s *PollerTestSuite) TestFailedMarketIsRecordedAndBatchContinues() {
	// A single retry attempt keeps the failure path fast
	s.config.Finalizer.BackoffMaxElapsedTime = time.Millisecond

	poller := s.newPoller(newGatewayStub("addr-m-fail"))

	now := time.Now().Unix()
	s.createResolvingMarket("m-fail", now-7200)
	s.createResolvingMarket("m-ok", now-3600)

	summary, err := poller.RunNow()
	require.NoError(s.T(), err)
	require.Equal(s.T(), 2, summary.Found)
	require.Equal(s.T(), 1, summary.Succeeded)
	require.Equal(s.T(), 1, summary.Failed)

	// The failed market stays Resolving for the next pass, the one behind
	// it in the batch still went through
	var failed, ok model.Market
	require.NoError(s.T(), s.db.First(&failed, "market_id = ?", "m-fail").Error)
	require.Equal(s.T(), model.MarketStateResolving, failed.State)
	require.NoError(s.T(), s.db.First(&ok, "market_id = ?", "m-ok").Error)
	require.Equal(s.T(), model.MarketStateFinalized, ok.State)
	require.NotNil(s.T(), ok.FinalOutcome)
	require.True(s.T(), *ok.FinalOutcome)

	var records []model.FinalizationError
	require.NoError(s.T(), s.db.Find(&records).Error)
	require.Len(s.T(), records, 1)
	require.Equal(s.T(), "m-fail", records[0].MarketId)
	require.Equal(s.T(), 1, records[0].Attempts)
	require.NotEmpty(s.T(), records[0].ErrorMessage)

	// The next pass picks the market up again and counts the attempt
	summary, err = poller.RunNow()
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, summary.Found)
	require.Equal(s.T(), 1, summary.Failed)

	require.NoError(s.T(), s.db.Order("created_at ASC").Find(&records).Error)
	require.Len(s.T(), records, 2)
	require.Equal(s.T(), 2, records[1].Attempts)
}

func (s *PollerTestSuite) TestBatchCapTakesOldestFirst() {
	poller := s.newPoller(newGatewayStub())

	base := time.Now().Unix() - 100000
	for i := 0; i < 15; i++ {
		s.createResolvingMarket(fmt.Sprintf("m-%02d", i), base+int64(i))
	}
	// Still inside the dispute window, must not be touched at all
	s.createResolvingMarket("m-recent", time.Now().Unix())

	summary, err := poller.RunNow()
	require.NoError(s.T(), err)
	require.Equal(s.T(), s.config.Finalizer.BatchSize, summary.Found)
	require.Equal(s.T(), s.config.Finalizer.BatchSize, summary.Succeeded)
	require.Equal(s.T(), 0, summary.Failed)
	require.EqualValues(s.T(), s.config.Finalizer.BatchSize, s.gateway.Submits.Load())

	var finalized []string
	require.NoError(s.T(), s.db.Model(&model.Market{}).
		Where("state = ?", model.MarketStateFinalized).
		Order("market_id ASC").
		Pluck("market_id", &finalized).
		Error)
	require.Len(s.T(), finalized, 10)
	for i, marketId := range finalized {
		require.Equal(s.T(), fmt.Sprintf("m-%02d", i), marketId)
	}

	var recent model.Market
	require.NoError(s.T(), s.db.First(&recent, "market_id = ?", "m-recent").Error)
	require.Equal(s.T(), model.MarketStateResolving, recent.State)
}
