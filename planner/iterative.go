package planner

import (
	"context"
	"math/big"

	"github.com/liqshift/liqshift-go/clmath"
	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/model"
)

// swapIterations bounds the refinement loop. The loop substitutes each
// quote's realized rate back into the sizing equation rather than checking
// convergence; five rounds keeps the residual well under bridge slippage for
// realistic pool depths.
const swapIterations = 5

// SwapQuoteFunc asks a collaborator what amountIn of one pool token converts
// to in the other. zeroForOne follows pool token order.
type SwapQuoteFunc func(ctx context.Context, zeroForOne bool, amountIn *big.Int) (*big.Int, error)

// PlanWithSwap sizes a position when settlement is allowed to execute a real
// on-chain swap to rebalance the budgets, e.g. a one-sided budget arriving
// from a single-token bridge route. Starting from the spot-price plan, it
// re-quotes the implied swap and re-solves the swap size against the quoted
// rate for a fixed number of rounds, then plans from the post-swap budgets
// with no further rebalancing.
func PlanWithSwap(ctx context.Context, req Request, quote SwapQuoteFunc) (RebalancedPlan, error) {
	if quote == nil {
		return RebalancedPlan{}, ngerr.New(ngerr.KindValidation, "swap quote collaborator is required")
	}

	spot, err := PlanRebalanced(req)
	if err != nil {
		return RebalancedPlan{}, err
	}
	if spot.SwapIn.Sign() == 0 {
		// Budgets already fit the range; nothing to convert.
		return spot, nil
	}

	budget0 := valueOrZero(req.Budget0)
	budget1 := valueOrZero(req.Budget1)
	zeroForOne := spot.SwapZeroForOne

	unit0, unit1, err := unitAmounts(req)
	if err != nil {
		return RebalancedPlan{}, err
	}

	swapIn := new(big.Int).Set(spot.SwapIn)
	quotedIn := new(big.Int).Set(swapIn)
	quotedOut := new(big.Int)
	for i := 0; i < swapIterations; i++ {
		out, err := quote(ctx, zeroForOne, swapIn)
		if err != nil {
			// Collaborator failures propagate verbatim.
			return RebalancedPlan{}, err
		}
		quotedIn.Set(swapIn)
		quotedOut.Set(out)
		next := solveSwapIn(budget0, budget1, unit0, unit1, zeroForOne, swapIn, out)
		if next.Sign() <= 0 {
			break
		}
		swapIn = next
	}

	// Project the final quote's rate onto the final swap size.
	swapOut := new(big.Int)
	if quotedIn.Sign() > 0 {
		swapOut = clmath.MulDiv(quotedOut, swapIn, quotedIn)
	}

	post0 := new(big.Int).Set(budget0)
	post1 := new(big.Int).Set(budget1)
	if zeroForOne {
		post0.Sub(post0, swapIn)
		post1.Add(post1, swapOut)
	} else {
		post1.Sub(post1, swapIn)
		post0.Add(post0, swapOut)
	}
	if post0.Sign() < 0 || post1.Sign() < 0 {
		return RebalancedPlan{}, ngerr.New(ngerr.KindInternal, "swap sizing exceeded available budget")
	}

	postReq := req
	postReq.Budget0 = post0
	postReq.Budget1 = post1
	position, err := PlanFromBudgets(postReq)
	if err != nil {
		return RebalancedPlan{}, err
	}
	return RebalancedPlan{
		Position:       position,
		SwapZeroForOne: zeroForOne,
		SwapIn:         swapIn,
		SwapOut:        swapOut,
	}, nil
}

// unitAmounts returns the token amounts a reference liquidity unit needs in
// the requested range at the current price. The unit is large (2^96) so the
// integer ratio keeps enough precision for sizing.
func unitAmounts(req Request) (*big.Int, *big.Int, error) {
	sqrtLower, err := clmath.SqrtRatioAtTick(req.TickLower)
	if err != nil {
		return nil, nil, ngerr.Wrap(ngerr.KindValidation, "lower tick ratio", err)
	}
	sqrtUpper, err := clmath.SqrtRatioAtTick(req.TickUpper)
	if err != nil {
		return nil, nil, ngerr.Wrap(ngerr.KindValidation, "upper tick ratio", err)
	}
	unit0, unit1 := clmath.AmountsForLiquidity(req.Pool.SqrtPriceX96, sqrtLower, sqrtUpper, clmath.Q96)
	return unit0, unit1, nil
}

// solveSwapIn finds the swap input x that leaves the post-swap budgets in
// the range's required token ratio, assuming the quoted rate out/in holds
// linearly. For zeroForOne:
//
//	(budget0 - x) * unit1 == (budget1 + x*out/in) * unit0
//
// solved for x with round-down division. A zero unit on the paid-out side
// means the range needs none of the kept token, so the whole surplus is
// converted.
func solveSwapIn(budget0, budget1, unit0, unit1 *big.Int, zeroForOne bool, quotedIn, quotedOut *big.Int) *big.Int {
	if quotedIn.Sign() == 0 {
		return new(big.Int)
	}
	if zeroForOne {
		if unit0.Sign() == 0 {
			return new(big.Int).Set(budget0)
		}
		// x = (b0*u1 - b1*u0) * in / (u1*in + out*u0)
		numerator := new(big.Int).Mul(budget0, unit1)
		numerator.Sub(numerator, new(big.Int).Mul(budget1, unit0))
		if numerator.Sign() <= 0 {
			return new(big.Int)
		}
		numerator.Mul(numerator, quotedIn)
		denominator := new(big.Int).Mul(unit1, quotedIn)
		denominator.Add(denominator, new(big.Int).Mul(quotedOut, unit0))
		if denominator.Sign() == 0 {
			return new(big.Int)
		}
		return numerator.Div(numerator, denominator)
	}
	if unit1.Sign() == 0 {
		return new(big.Int).Set(budget1)
	}
	numerator := new(big.Int).Mul(budget1, unit0)
	numerator.Sub(numerator, new(big.Int).Mul(budget0, unit1))
	if numerator.Sign() <= 0 {
		return new(big.Int)
	}
	numerator.Mul(numerator, quotedIn)
	denominator := new(big.Int).Mul(unit0, quotedIn)
	denominator.Add(denominator, new(big.Int).Mul(quotedOut, unit1))
	if denominator.Sign() == 0 {
		return new(big.Int)
	}
	return numerator.Div(numerator, denominator)
}

// ProjectedPriceImpact projects the pool price after swapping amountIn and
// returns the relative movement in basis points. The projection needs pool
// liquidity; an empty pool cannot absorb a swap at a defensible price.
func ProjectedPriceImpact(pool model.Pool, zeroForOne bool, amountIn *big.Int) (uint64, error) {
	if amountIn == nil || amountIn.Sign() == 0 {
		return 0, nil
	}
	if pool.Liquidity == nil || pool.Liquidity.Sign() == 0 {
		return 0, ngerr.New(ngerr.KindPrecondition, "destination pool has no liquidity")
	}
	next, err := clmath.NextSqrtPriceFromInput(pool.SqrtPriceX96, pool.Liquidity, amountIn, zeroForOne)
	if err != nil {
		return 0, ngerr.Wrap(ngerr.KindInternal, "project price impact", err)
	}
	delta := new(big.Int).Sub(next, pool.SqrtPriceX96)
	delta.Abs(delta)
	delta.Mul(delta, big.NewInt(10_000))
	delta.Div(delta, pool.SqrtPriceX96)
	return delta.Uint64(), nil
}
