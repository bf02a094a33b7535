// Package providers defines the narrow quoting interfaces the engine
// consumes, plus shared request/response shapes. Concrete clients live in
// subpackages; the engine never depends on a specific vendor.
package providers

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// BridgeQuoteRequest asks for a quoted transfer of one asset between chains.
type BridgeQuoteRequest struct {
	SourceChainID      uint64
	DestinationChainID uint64
	InputToken         common.Address
	OutputToken        common.Address
	Amount             *big.Int
	Recipient          common.Address
	// SlippageBps bounds the guaranteed floor when the vendor does not
	// return one itself.
	SlippageBps uint16
}

// Fingerprint is the deduplication key for in-flight quote coalescing.
func (r BridgeQuoteRequest) Fingerprint() string {
	return fmt.Sprintf("bridge|%d|%d|%s|%s|%s|%d",
		r.SourceChainID, r.DestinationChainID,
		r.InputToken.Hex(), r.OutputToken.Hex(),
		r.Amount.String(), r.SlippageBps)
}

// BridgeQuote is a fee-inclusive promise: OutputAmount optimistically,
// at least MinOutputAmount guaranteed.
type BridgeQuote struct {
	OutputAmount       *big.Int
	MinOutputAmount    *big.Int
	QuoteTimestamp     uint32
	FillDeadline       uint32
	DestinationSettler common.Address
	FetchedAt          time.Time
}

type BridgeQuoter interface {
	QuoteBridge(ctx context.Context, req BridgeQuoteRequest) (BridgeQuote, error)
}

// SwapQuoteRequest asks for a same-chain exact-input swap quote.
type SwapQuoteRequest struct {
	ChainID  uint64
	TokenIn  common.Address
	TokenOut common.Address
	AmountIn *big.Int
}

// Fingerprint is the deduplication key for in-flight quote coalescing.
func (r SwapQuoteRequest) Fingerprint() string {
	return fmt.Sprintf("swap|%d|%s|%s|%s",
		r.ChainID, r.TokenIn.Hex(), r.TokenOut.Hex(), r.AmountIn.String())
}

type SwapQuote struct {
	AmountOut *big.Int
	FetchedAt time.Time
}

type SwapQuoter interface {
	QuoteSwap(ctx context.Context, req SwapQuoteRequest) (SwapQuote, error)
}
