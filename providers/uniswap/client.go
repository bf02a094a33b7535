// Package uniswap quotes exact-input swaps against the Uniswap trade API.
package uniswap

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"time"

	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/httpx"
	"github.com/liqshift/liqshift-go/providers"
)

const defaultBase = "https://trade-api.gateway.uniswap.org"

// quoteOnlySwapper is a deterministic placeholder for quote retrieval flows.
const quoteOnlySwapper = "0x0000000000000000000000000000000000000001"

type Client struct {
	http    *httpx.Client
	baseURL string
	apiKey  string
	now     func() time.Time
}

func New(httpClient *httpx.Client, apiKey string) *Client {
	return &Client{http: httpClient, baseURL: defaultBase, apiKey: apiKey, now: time.Now}
}

type quoteResponse struct {
	Quote struct {
		Output struct {
			Amount string `json:"amount"`
		} `json:"output"`
	} `json:"quote"`
	AmountOut string `json:"amountOut"`
}

// QuoteSwap fetches an exact-input quote. The swapper address is a fixed
// placeholder since quotes never execute.
func (c *Client) QuoteSwap(ctx context.Context, req providers.SwapQuoteRequest) (providers.SwapQuote, error) {
	if req.AmountIn == nil || req.AmountIn.Sign() <= 0 {
		return providers.SwapQuote{}, ngerr.New(ngerr.KindValidation, "swap quote amount must be positive")
	}
	if req.TokenIn == req.TokenOut {
		return providers.SwapQuote{}, ngerr.New(ngerr.KindValidation, "swap quote tokens must differ")
	}

	payload := map[string]any{
		"tokenInChainId":  req.ChainID,
		"tokenOutChainId": req.ChainID,
		"tokenIn":         req.TokenIn.Hex(),
		"tokenOut":        req.TokenOut.Hex(),
		"amount":          req.AmountIn.String(),
		"type":            "EXACT_INPUT",
		"swapper":         quoteOnlySwapper,
		"autoSlippage":    "DEFAULT",
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return providers.SwapQuote{}, ngerr.Wrap(ngerr.KindInternal, "marshal uniswap request", err)
	}

	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{"x-api-key": c.apiKey}
	}
	var resp quoteResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/v1/quote", buf, headers, &resp); err != nil {
		return providers.SwapQuote{}, err
	}

	raw := strings.TrimSpace(resp.AmountOut)
	if raw == "" {
		raw = strings.TrimSpace(resp.Quote.Output.Amount)
	}
	if raw == "" {
		return providers.SwapQuote{}, ngerr.New(ngerr.KindCollaborator, "uniswap quote missing output amount")
	}
	amountOut, ok := new(big.Int).SetString(raw, 10)
	if !ok || amountOut.Sign() < 0 {
		return providers.SwapQuote{}, ngerr.New(ngerr.KindCollaborator, "uniswap quote output amount is not a valid integer")
	}

	return providers.SwapQuote{
		AmountOut: amountOut,
		FetchedAt: c.now().UTC(),
	}, nil
}
