// Package planner sizes the best achievable destination position against a
// token budget and a target tick range. It offers three strategies: a plain
// budget-constrained plan (no swap), a single-shot spot-rebalanced plan, and
// a bounded iterative plan that re-quotes a real swap collaborator.
package planner

import (
	"math/big"

	"github.com/liqshift/liqshift-go/clmath"
	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/model"
)

// Request describes one planning problem. Budgets are what is actually
// available on the destination chain; nil means zero.
type Request struct {
	Pool      model.Pool
	TickLower int32
	TickUpper int32
	Budget0   *big.Int
	Budget1   *big.Int
}

func (r Request) validate() error {
	if err := r.Pool.Validate(); err != nil {
		return err
	}
	if r.TickLower >= r.TickUpper {
		return ngerr.Newf(ngerr.KindValidation, "tick range [%d, %d) is empty or inverted", r.TickLower, r.TickUpper)
	}
	if r.TickLower < clmath.MinTick || r.TickUpper > clmath.MaxTick {
		return ngerr.Newf(ngerr.KindValidation, "tick range [%d, %d) outside valid ticks", r.TickLower, r.TickUpper)
	}
	if spacing := r.Pool.TickSpacing; spacing > 0 {
		if r.TickLower%spacing != 0 || r.TickUpper%spacing != 0 {
			return ngerr.Newf(ngerr.KindValidation, "tick range [%d, %d) not aligned to spacing %d", r.TickLower, r.TickUpper, spacing)
		}
	}
	if r.Budget0 != nil && r.Budget0.Sign() < 0 {
		return ngerr.New(ngerr.KindValidation, "budget0 must be non-negative")
	}
	if r.Budget1 != nil && r.Budget1.Sign() < 0 {
		return ngerr.New(ngerr.KindValidation, "budget1 must be non-negative")
	}
	return nil
}

// PlanFromBudgets computes the maximal position fundable by the two budgets
// with no swap: the binding budget limits the liquidity, the surplus of the
// other token becomes a refund. The planned amounts never exceed either
// budget. When one budget is zero and the current price sits inside the
// range, the plan degenerates to a single-sided position at the nearest
// spacing-aligned tick boundary. Both budgets zero yields the zero position.
func PlanFromBudgets(req Request) (model.Position, error) {
	if err := req.validate(); err != nil {
		return model.Position{}, err
	}
	budget0 := valueOrZero(req.Budget0)
	budget1 := valueOrZero(req.Budget1)

	tickLower, tickUpper := req.TickLower, req.TickUpper
	if req.Pool.InRange(tickLower, tickUpper) {
		// Single-sided degeneration: shrink the range away from the current
		// price so the position only needs the token we actually have.
		if budget1.Sign() == 0 && budget0.Sign() > 0 {
			tickLower = alignTickUp(req.Pool.Tick+1, req.Pool.TickSpacing)
		} else if budget0.Sign() == 0 && budget1.Sign() > 0 {
			tickUpper = alignTickDown(req.Pool.Tick, req.Pool.TickSpacing)
		}
		if tickLower >= tickUpper {
			// Range collapsed entirely; nothing plannable.
			return zeroPosition(req, budget0, budget1), nil
		}
	}

	sqrtLower, err := clmath.SqrtRatioAtTick(tickLower)
	if err != nil {
		return model.Position{}, ngerr.Wrap(ngerr.KindValidation, "lower tick ratio", err)
	}
	sqrtUpper, err := clmath.SqrtRatioAtTick(tickUpper)
	if err != nil {
		return model.Position{}, ngerr.Wrap(ngerr.KindValidation, "upper tick ratio", err)
	}

	liquidity := clmath.LiquidityForAmounts(req.Pool.SqrtPriceX96, sqrtLower, sqrtUpper, budget0, budget1)
	amount0, amount1 := clmath.AmountsForLiquidity(req.Pool.SqrtPriceX96, sqrtLower, sqrtUpper, liquidity)

	pos := model.NewPosition(req.Pool, tickLower, tickUpper, liquidity, amount0, amount1)
	pos.Amount0Refund = new(big.Int).Sub(budget0, amount0)
	pos.Amount1Refund = new(big.Int).Sub(budget1, amount1)
	return pos, nil
}

// RebalancedPlan is a position plan plus the implied swap that funds it.
type RebalancedPlan struct {
	Position model.Position
	// SwapZeroForOne is the direction of the implied swap; meaningless when
	// SwapIn is zero.
	SwapZeroForOne bool
	// SwapIn is how much of the over-supplied token the settlement must
	// convert; zero when the budgets already fit the range.
	SwapIn *big.Int
	// SwapOut is the assumed conversion output backing the plan.
	SwapOut *big.Int
}

// PlanRebalanced computes the maximal position reachable when the
// settlement may convert surplus budget at the pool's spot price. It is a
// single-shot linear correction, not an iteration to convergence: step one
// sizes the position as if both budgets were fully available, step two
// rescales by budgetValue/positionValue when the position consumes both
// tokens. The result is exact under the spot-price assumption and only
// approximate once the implied swap itself moves the price; the
// orchestrator's price-impact guard bounds that error.
func PlanRebalanced(req Request) (RebalancedPlan, error) {
	if err := req.validate(); err != nil {
		return RebalancedPlan{}, err
	}
	budget0 := valueOrZero(req.Budget0)
	budget1 := valueOrZero(req.Budget1)
	if budget0.Sign() == 0 && budget1.Sign() == 0 {
		return RebalancedPlan{
			Position: zeroPosition(req, budget0, budget1),
			SwapIn:   new(big.Int),
			SwapOut:  new(big.Int),
		}, nil
	}

	sqrtLower, err := clmath.SqrtRatioAtTick(req.TickLower)
	if err != nil {
		return RebalancedPlan{}, ngerr.Wrap(ngerr.KindValidation, "lower tick ratio", err)
	}
	sqrtUpper, err := clmath.SqrtRatioAtTick(req.TickUpper)
	if err != nil {
		return RebalancedPlan{}, ngerr.Wrap(ngerr.KindValidation, "upper tick ratio", err)
	}
	sqrtPrice := req.Pool.SqrtPriceX96
	priceX192 := new(big.Int).Mul(sqrtPrice, sqrtPrice)

	var liquidity *big.Int
	switch {
	case sqrtPrice.Cmp(sqrtLower) <= 0:
		// Price below range: everything must end up as token0.
		total0 := new(big.Int).Add(budget0, clmath.MulDiv(budget1, clmath.Q192, priceX192))
		liquidity = clmath.LiquidityForAmount0(sqrtLower, sqrtUpper, total0)
	case sqrtPrice.Cmp(sqrtUpper) >= 0:
		total1 := new(big.Int).Add(budget1, clmath.MulDiv(budget0, priceX192, clmath.Q192))
		liquidity = clmath.LiquidityForAmount1(sqrtLower, sqrtUpper, total1)
	default:
		// Step one: each side funded as if its budget were fully available.
		liquidity = new(big.Int).Add(
			clmath.LiquidityForAmount0(sqrtPrice, sqrtUpper, budget0),
			clmath.LiquidityForAmount1(sqrtLower, sqrtPrice, budget1),
		)
	}

	amount0, amount1 := clmath.AmountsForLiquidity(sqrtPrice, sqrtLower, sqrtUpper, liquidity)

	if amount0.Sign() > 0 && amount1.Sign() > 0 {
		// Step two: value both sides in token1 at spot and rescale so the
		// position's value exactly matches the budget's value.
		positionValue := new(big.Int).Add(amount1, clmath.MulDiv(amount0, priceX192, clmath.Q192))
		budgetValue := new(big.Int).Add(budget1, clmath.MulDiv(budget0, priceX192, clmath.Q192))
		if positionValue.Sign() > 0 && positionValue.Cmp(budgetValue) != 0 {
			amount0 = clmath.MulDiv(amount0, budgetValue, positionValue)
			amount1 = clmath.MulDiv(amount1, budgetValue, positionValue)
			liquidity = clmath.LiquidityForAmounts(sqrtPrice, sqrtLower, sqrtUpper, amount0, amount1)
			amount0, amount1 = clmath.AmountsForLiquidity(sqrtPrice, sqrtLower, sqrtUpper, liquidity)
		}
	}

	plan := RebalancedPlan{
		Position: model.NewPosition(req.Pool, req.TickLower, req.TickUpper, liquidity, amount0, amount1),
		SwapIn:   new(big.Int),
		SwapOut:  new(big.Int),
	}
	switch {
	case amount0.Cmp(budget0) > 0:
		plan.SwapZeroForOne = false
		plan.SwapIn.Sub(budget1, amount1)
		plan.SwapOut.Sub(amount0, budget0)
	case amount1.Cmp(budget1) > 0:
		plan.SwapZeroForOne = true
		plan.SwapIn.Sub(budget0, amount0)
		plan.SwapOut.Sub(amount1, budget1)
	}
	if plan.SwapIn.Sign() < 0 {
		plan.SwapIn.SetInt64(0)
	}
	if plan.SwapOut.Sign() < 0 {
		plan.SwapOut.SetInt64(0)
	}
	plan.Position.Amount0Refund = clampedSub(budget0, plan.Position.Amount0, swapSpend(plan, true))
	plan.Position.Amount1Refund = clampedSub(budget1, plan.Position.Amount1, swapSpend(plan, false))
	return plan, nil
}

func swapSpend(plan RebalancedPlan, token0 bool) *big.Int {
	if plan.SwapIn.Sign() == 0 {
		return new(big.Int)
	}
	if token0 == plan.SwapZeroForOne {
		return plan.SwapIn
	}
	return new(big.Int)
}

func clampedSub(budget, consumed, spent *big.Int) *big.Int {
	out := new(big.Int).Sub(budget, consumed)
	out.Sub(out, spent)
	if out.Sign() < 0 {
		out.SetInt64(0)
	}
	return out
}

func zeroPosition(req Request, budget0, budget1 *big.Int) model.Position {
	pos := model.NewPosition(req.Pool, req.TickLower, req.TickUpper, nil, nil, nil)
	pos.Amount0Refund = new(big.Int).Set(budget0)
	pos.Amount1Refund = new(big.Int).Set(budget1)
	return pos
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// alignTickUp rounds tick up to the nearest spacing multiple.
func alignTickUp(tick, spacing int32) int32 {
	if spacing <= 0 {
		return tick
	}
	rem := tick % spacing
	if rem == 0 {
		return tick
	}
	if tick > 0 {
		return tick + spacing - rem
	}
	return tick - rem
}

// alignTickDown rounds tick down to the nearest spacing multiple.
func alignTickDown(tick, spacing int32) int32 {
	if spacing <= 0 {
		return tick
	}
	rem := tick % spacing
	if rem == 0 {
		return tick
	}
	if tick > 0 {
		return tick - rem
	}
	return tick - spacing - rem
}
