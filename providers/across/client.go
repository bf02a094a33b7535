// Package across quotes value-bridge routes against the Across API.
package across

import (
	"context"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/httpx"
	"github.com/liqshift/liqshift-go/providers"
)

const defaultBase = "https://app.across.to/api"

type Client struct {
	http    *httpx.Client
	baseURL string
	now     func() time.Time
}

func New(httpClient *httpx.Client) *Client {
	return &Client{http: httpClient, baseURL: defaultBase, now: time.Now}
}

type suggestedFeesResponse struct {
	OutputAmount    string `json:"outputAmount"`
	MinOutputAmount string `json:"minOutputAmount"`
	TotalRelayFee   struct {
		Total string `json:"total"`
	} `json:"totalRelayFee"`
	Timestamp            string `json:"timestamp"`
	FillDeadline         string `json:"fillDeadline"`
	DestinationSpokePool string `json:"destinationSpokePool"`
	SpokePoolAddress     string `json:"spokePoolAddress"`
}

// QuoteBridge fetches a suggested-fees quote and normalizes it into the
// engine's route shape. When the vendor returns no guaranteed floor, the
// request's slippage bound derives one from the optimistic output.
func (c *Client) QuoteBridge(ctx context.Context, req providers.BridgeQuoteRequest) (providers.BridgeQuote, error) {
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return providers.BridgeQuote{}, ngerr.New(ngerr.KindValidation, "bridge quote amount must be positive")
	}
	if req.SlippageBps >= 10_000 {
		return providers.BridgeQuote{}, ngerr.New(ngerr.KindValidation, "bridge slippage bps must be below 10000")
	}

	vals := url.Values{}
	vals.Set("originChainId", strconv.FormatUint(req.SourceChainID, 10))
	vals.Set("destinationChainId", strconv.FormatUint(req.DestinationChainID, 10))
	vals.Set("inputToken", req.InputToken.Hex())
	vals.Set("outputToken", req.OutputToken.Hex())
	vals.Set("amount", req.Amount.String())
	if req.Recipient != (common.Address{}) {
		vals.Set("recipient", req.Recipient.Hex())
	}

	var resp suggestedFeesResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/suggested-fees?"+vals.Encode(), &resp); err != nil {
		return providers.BridgeQuote{}, err
	}

	output, ok := parseBaseUnits(resp.OutputAmount)
	if !ok {
		// Older responses carry only the total relay fee; output is
		// amount minus fee then.
		fee, feeOK := parseBaseUnits(resp.TotalRelayFee.Total)
		if !feeOK {
			return providers.BridgeQuote{}, ngerr.New(ngerr.KindCollaborator, "across quote missing output amount")
		}
		output = new(big.Int).Sub(req.Amount, fee)
		if output.Sign() < 0 {
			return providers.BridgeQuote{}, ngerr.New(ngerr.KindCollaborator, "across relay fee exceeds bridged amount")
		}
	}

	minOutput, ok := parseBaseUnits(resp.MinOutputAmount)
	if !ok {
		minOutput = applySlippageFloor(output, req.SlippageBps)
	}
	if minOutput.Cmp(output) > 0 {
		return providers.BridgeQuote{}, ngerr.New(ngerr.KindCollaborator, "across quote floor exceeds quoted output")
	}

	settler := firstHexAddress(resp.DestinationSpokePool, resp.SpokePoolAddress)
	if settler == (common.Address{}) {
		return providers.BridgeQuote{}, ngerr.New(ngerr.KindCollaborator, "across quote missing destination settler")
	}

	return providers.BridgeQuote{
		OutputAmount:       output,
		MinOutputAmount:    minOutput,
		QuoteTimestamp:     parseUnix32(resp.Timestamp, uint32(c.now().UTC().Unix())),
		FillDeadline:       parseUnix32(resp.FillDeadline, 0),
		DestinationSettler: settler,
		FetchedAt:          c.now().UTC(),
	}, nil
}

func applySlippageFloor(output *big.Int, slippageBps uint16) *big.Int {
	floor := new(big.Int).Mul(output, big.NewInt(int64(10_000-slippageBps)))
	return floor.Div(floor, big.NewInt(10_000))
}

func parseBaseUnits(raw string) (*big.Int, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return nil, false
	}
	value, ok := new(big.Int).SetString(clean, 10)
	if !ok || value.Sign() < 0 {
		return nil, false
	}
	return value, true
}

func parseUnix32(raw string, fallback uint32) uint32 {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return fallback
	}
	v, err := strconv.ParseUint(clean, 10, 32)
	if err != nil {
		return fallback
	}
	return uint32(v)
}

func firstHexAddress(candidates ...string) common.Address {
	for _, candidate := range candidates {
		clean := strings.TrimSpace(candidate)
		if common.IsHexAddress(clean) {
			return common.HexToAddress(clean)
		}
	}
	return common.Address{}
}
