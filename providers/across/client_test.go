package across

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/httpx"
	"github.com/liqshift/liqshift-go/providers"
)

func testRequest() providers.BridgeQuoteRequest {
	return providers.BridgeQuoteRequest{
		SourceChainID:      1,
		DestinationChainID: 8453,
		InputToken:         common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		OutputToken:        common.HexToAddress("0x4200000000000000000000000000000000000006"),
		Amount:             big.NewInt(2_000_000_000_000_000_000),
		Recipient:          common.HexToAddress("0x1111111111111111111111111111111111111111"),
		SlippageBps:        50,
	}
}

func TestQuoteBridgeParsesFullResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/suggested-fees" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("originChainId"); got != "1" {
			t.Fatalf("unexpected originChainId %s", got)
		}
		if got := r.URL.Query().Get("destinationChainId"); got != "8453" {
			t.Fatalf("unexpected destinationChainId %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"outputAmount": "1995000000000000000",
			"minOutputAmount": "1990000000000000000",
			"timestamp": "1756380000",
			"fillDeadline": "1756383600",
			"destinationSpokePool": "0x09aea4b2242abC8bb4BB78D537A67a245A7bEC64"
		}`))
	}))
	defer server.Close()

	client := New(httpx.New(0, 1))
	client.baseURL = server.URL
	client.now = func() time.Time { return time.Unix(1756380010, 0) }

	quote, err := client.QuoteBridge(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("QuoteBridge: %v", err)
	}
	if quote.OutputAmount.String() != "1995000000000000000" {
		t.Fatalf("unexpected output amount %s", quote.OutputAmount)
	}
	if quote.MinOutputAmount.String() != "1990000000000000000" {
		t.Fatalf("unexpected min output amount %s", quote.MinOutputAmount)
	}
	if quote.QuoteTimestamp != 1756380000 {
		t.Fatalf("unexpected quote timestamp %d", quote.QuoteTimestamp)
	}
	if quote.FillDeadline != 1756383600 {
		t.Fatalf("unexpected fill deadline %d", quote.FillDeadline)
	}
	if quote.DestinationSettler != common.HexToAddress("0x09aea4b2242abC8bb4BB78D537A67a245A7bEC64") {
		t.Fatalf("unexpected settler %s", quote.DestinationSettler)
	}
}

func TestQuoteBridgeDerivesFloorFromSlippage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"outputAmount": "1000000",
			"timestamp": "1756380000",
			"fillDeadline": "1756383600",
			"spokePoolAddress": "0x09aea4b2242abC8bb4BB78D537A67a245A7bEC64"
		}`))
	}))
	defer server.Close()

	client := New(httpx.New(0, 1))
	client.baseURL = server.URL

	req := testRequest()
	req.Amount = big.NewInt(1_005_000)
	req.SlippageBps = 100

	quote, err := client.QuoteBridge(context.Background(), req)
	if err != nil {
		t.Fatalf("QuoteBridge: %v", err)
	}
	if quote.MinOutputAmount.String() != "990000" {
		t.Fatalf("unexpected derived floor %s", quote.MinOutputAmount)
	}
}

func TestQuoteBridgeFallsBackToRelayFee(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"totalRelayFee": {"total": "5000"},
			"destinationSpokePool": "0x09aea4b2242abC8bb4BB78D537A67a245A7bEC64"
		}`))
	}))
	defer server.Close()

	client := New(httpx.New(0, 1))
	client.baseURL = server.URL

	req := testRequest()
	req.Amount = big.NewInt(1_000_000)

	quote, err := client.QuoteBridge(context.Background(), req)
	if err != nil {
		t.Fatalf("QuoteBridge: %v", err)
	}
	if quote.OutputAmount.String() != "995000" {
		t.Fatalf("unexpected output amount %s", quote.OutputAmount)
	}
}

func TestQuoteBridgeMissingSettler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"outputAmount": "1000"}`))
	}))
	defer server.Close()

	client := New(httpx.New(0, 1))
	client.baseURL = server.URL

	_, err := client.QuoteBridge(context.Background(), testRequest())
	if !ngerr.IsKind(err, ngerr.KindCollaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
}

func TestQuoteBridgeRejectsNonPositiveAmount(t *testing.T) {
	client := New(httpx.New(0, 1))
	req := testRequest()
	req.Amount = big.NewInt(0)
	_, err := client.QuoteBridge(context.Background(), req)
	if !ngerr.IsKind(err, ngerr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
