package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/0xBased-lang/zmart-syncer/src/utils/config"
	"github.com/0xBased-lang/zmart-syncer/src/utils/logger"
	"github.com/go-resty/resty/v2"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

var ErrNotConfirmed = errors.New("transaction not confirmed")

type rpcRequest struct {
	Jsonrpc string      `json:"jsonrpc"`
	Id      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type submitParams struct {
	Program  string                 `json:"program"`
	Method   string                 `json:"method"`
	Accounts []string               `json:"accounts"`
	Args     map[string]interface{} `json:"args"`
}

type submitResult struct {
	Signature string `json:"signature"`
	Confirmed bool   `json:"confirmed"`
}

// Client talks to the transaction gateway that signs and submits program
// calls on behalf of this service. Requests are rate limited so a hot
// finalization loop cannot flood the gateway.
type Client struct {
	config *config.Ledger
	log    *logrus.Entry

	httpClient   *resty.Client
	limiter      ratelimit.Limiter
	addressCache *cache.Cache
}

func NewClient(config *config.Config) (self *Client) {
	self = new(Client)
	self.config = &config.Ledger
	self.log = logger.NewSublogger("ledger-client")

	self.httpClient = resty.New().
		SetBaseURL(self.config.GatewayUrl).
		SetTimeout(self.config.RequestTimeout).
		SetHeader("Content-Type", "application/json")

	self.limiter = ratelimit.New(self.config.RequestsPerSecond)

	self.addressCache = cache.New(self.config.AddressCacheTTL, self.config.AddressCacheCleanupInterval)
	return
}

func (self *Client) call(ctx context.Context, method string, params interface{}, out interface{}) (err error) {
	self.limiter.Take()

	var response rpcResponse
	resp, err := self.httpClient.R().
		SetContext(ctx).
		SetBody(&rpcRequest{Jsonrpc: "2.0", Id: 1, Method: method, Params: params}).
		SetResult(&response).
		Post("/")
	if err != nil {
		return
	}
	if resp.IsError() {
		return fmt.Errorf("gateway returned %s", resp.Status())
	}
	if response.Error != nil {
		return fmt.Errorf("gateway error %d: %s", response.Error.Code, response.Error.Message)
	}

	if out != nil {
		err = json.Unmarshal(response.Result, out)
		if err != nil {
			return
		}
	}
	return
}

// SubmitAndConfirm submits one program call and waits for the gateway to
// confirm it. Bounded by SubmitTimeout on top of the caller's context.
func (self *Client) SubmitAndConfirm(ctx context.Context, method string, accounts []string, args map[string]interface{}) (signature string, err error) {
	ctx, cancel := context.WithTimeout(ctx, self.config.SubmitTimeout)
	defer cancel()

	var result submitResult
	err = self.call(ctx, "submitAndConfirm", &submitParams{
		Program:  self.config.ProgramId,
		Method:   method,
		Accounts: accounts,
		Args:     args,
	}, &result)
	if err != nil {
		return
	}
	if !result.Confirmed {
		err = ErrNotConfirmed
		return
	}

	signature = result.Signature
	return
}

// MarketAddress resolves a market id to its on-ledger account address.
// Addresses are deterministic so positive lookups are cached.
func (self *Client) MarketAddress(ctx context.Context, marketId string) (address string, err error) {
	if cached, ok := self.addressCache.Get(marketId); ok {
		return cached.(string), nil
	}

	err = self.call(ctx, "getMarketAddress", map[string]interface{}{
		"program":   self.config.ProgramId,
		"market_id": marketId,
	}, &address)
	if err != nil {
		return
	}

	self.addressCache.Set(marketId, address, cache.DefaultExpiration)
	return
}
