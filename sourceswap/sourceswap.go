// Package sourceswap consolidates a position's non-bridgeable token into
// the bridgeable asset before the value leaves the source chain.
package sourceswap

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/providers"
)

// Estimate is the outcome of pricing the consolidation swap: SwapIn of the
// non-bridgeable token converts into QuotedOut of the bridgeable asset,
// with MinOut as the slippage-bounded floor.
type Estimate struct {
	SwapIn    *big.Int
	QuotedOut *big.Int
	MinOut    *big.Int
}

type Estimator struct {
	quoter providers.SwapQuoter
}

func NewEstimator(quoter providers.SwapQuoter) *Estimator {
	return &Estimator{quoter: quoter}
}

// Consolidate quotes swapping amountIn of tokenIn into the bridgeable
// asset on chainID. A zero amountIn short-circuits to a zero estimate; an
// unset bridgeable asset is a precondition failure since nothing can leave
// the chain.
func (e *Estimator) Consolidate(ctx context.Context, chainID uint64, tokenIn, bridgeable common.Address, amountIn *big.Int, slippageBps uint16) (Estimate, error) {
	if bridgeable == (common.Address{}) {
		return Estimate{}, ngerr.New(ngerr.KindPrecondition, "no bridgeable asset configured for source chain")
	}
	if slippageBps >= 10_000 {
		return Estimate{}, ngerr.New(ngerr.KindValidation, "consolidation slippage bps must be below 10000")
	}
	if amountIn == nil || amountIn.Sign() == 0 {
		return Estimate{
			SwapIn:    new(big.Int),
			QuotedOut: new(big.Int),
			MinOut:    new(big.Int),
		}, nil
	}
	if amountIn.Sign() < 0 {
		return Estimate{}, ngerr.New(ngerr.KindValidation, "consolidation amount must not be negative")
	}
	if tokenIn == bridgeable {
		// Already the bridgeable asset; nothing to swap.
		return Estimate{
			SwapIn:    new(big.Int),
			QuotedOut: new(big.Int).Set(amountIn),
			MinOut:    new(big.Int).Set(amountIn),
		}, nil
	}

	quote, err := e.quoter.QuoteSwap(ctx, providers.SwapQuoteRequest{
		ChainID:  chainID,
		TokenIn:  tokenIn,
		TokenOut: bridgeable,
		AmountIn: amountIn,
	})
	if err != nil {
		return Estimate{}, err
	}
	if quote.AmountOut == nil || quote.AmountOut.Sign() < 0 {
		return Estimate{}, ngerr.New(ngerr.KindCollaborator, "swap quoter returned invalid output amount")
	}

	minOut := new(big.Int).Mul(quote.AmountOut, big.NewInt(int64(10_000-slippageBps)))
	minOut.Div(minOut, big.NewInt(10_000))

	return Estimate{
		SwapIn:    new(big.Int).Set(amountIn),
		QuotedOut: new(big.Int).Set(quote.AmountOut),
		MinOut:    minOut,
	}, nil
}
