package clmath

import "math/big"

// LiquidityForAmount0 computes the maximal liquidity amount0 can fund over
// [sqrtRatioA, sqrtRatioB]: amount0 * (sqrtA * sqrtB / Q96) / (sqrtB - sqrtA).
func LiquidityForAmount0(sqrtRatioA, sqrtRatioB, amount0 *big.Int) *big.Int {
	lower, upper := sortRatios(sqrtRatioA, sqrtRatioB)
	if upper.Cmp(lower) == 0 {
		return new(big.Int)
	}
	intermediate := MulDiv(lower, upper, Q96)
	return MulDiv(amount0, intermediate, new(big.Int).Sub(upper, lower))
}

// LiquidityForAmount1 computes the maximal liquidity amount1 can fund over
// [sqrtRatioA, sqrtRatioB]: amount1 * Q96 / (sqrtB - sqrtA).
func LiquidityForAmount1(sqrtRatioA, sqrtRatioB, amount1 *big.Int) *big.Int {
	lower, upper := sortRatios(sqrtRatioA, sqrtRatioB)
	if upper.Cmp(lower) == 0 {
		return new(big.Int)
	}
	return MulDiv(amount1, Q96, new(big.Int).Sub(upper, lower))
}

// LiquidityForAmounts computes the maximal liquidity both amounts together
// can fund at the current price, taking the binding constraint when the
// price is inside the range.
func LiquidityForAmounts(sqrtPrice, sqrtRatioA, sqrtRatioB, amount0, amount1 *big.Int) *big.Int {
	lower, upper := sortRatios(sqrtRatioA, sqrtRatioB)
	switch {
	case sqrtPrice.Cmp(lower) <= 0:
		return LiquidityForAmount0(lower, upper, amount0)
	case sqrtPrice.Cmp(upper) < 0:
		liquidity0 := LiquidityForAmount0(sqrtPrice, upper, amount0)
		liquidity1 := LiquidityForAmount1(lower, sqrtPrice, amount1)
		if liquidity0.Cmp(liquidity1) < 0 {
			return liquidity0
		}
		return liquidity1
	default:
		return LiquidityForAmount1(lower, upper, amount1)
	}
}

// Amount0ForLiquidity computes the token0 owed for liquidity over
// [sqrtRatioA, sqrtRatioB], rounding down.
func Amount0ForLiquidity(sqrtRatioA, sqrtRatioB, liquidity *big.Int) *big.Int {
	lower, upper := sortRatios(sqrtRatioA, sqrtRatioB)
	if lower.Sign() == 0 {
		return new(big.Int)
	}
	shifted := new(big.Int).Lsh(liquidity, 96)
	numerator := MulDiv(shifted, new(big.Int).Sub(upper, lower), upper)
	return numerator.Div(numerator, lower)
}

// Amount1ForLiquidity computes the token1 owed for liquidity over
// [sqrtRatioA, sqrtRatioB], rounding down.
func Amount1ForLiquidity(sqrtRatioA, sqrtRatioB, liquidity *big.Int) *big.Int {
	lower, upper := sortRatios(sqrtRatioA, sqrtRatioB)
	return MulDiv(liquidity, new(big.Int).Sub(upper, lower), Q96)
}

// AmountsForLiquidity computes both token amounts owed for liquidity over
// the range at the current price, rounding down.
func AmountsForLiquidity(sqrtPrice, sqrtRatioA, sqrtRatioB, liquidity *big.Int) (amount0, amount1 *big.Int) {
	lower, upper := sortRatios(sqrtRatioA, sqrtRatioB)
	switch {
	case sqrtPrice.Cmp(lower) <= 0:
		return Amount0ForLiquidity(lower, upper, liquidity), new(big.Int)
	case sqrtPrice.Cmp(upper) < 0:
		return Amount0ForLiquidity(sqrtPrice, upper, liquidity),
			Amount1ForLiquidity(lower, sqrtPrice, liquidity)
	default:
		return new(big.Int), Amount1ForLiquidity(lower, upper, liquidity)
	}
}

// NextSqrtPriceFromInput projects the pool price after swapping amountIn
// against liquidity, in the direction given by zeroForOne. Used to bound the
// price impact of the implied settlement swap.
func NextSqrtPriceFromInput(sqrtPrice, liquidity, amountIn *big.Int, zeroForOne bool) (*big.Int, error) {
	if sqrtPrice.Sign() <= 0 {
		return nil, ErrSqrtPriceZero
	}
	if liquidity.Sign() <= 0 {
		return nil, ErrLiquidityZero
	}
	if amountIn.Sign() == 0 {
		return new(big.Int).Set(sqrtPrice), nil
	}

	if zeroForOne {
		// Token0 in: price moves down. next = ceil(L<<96 * sqrtP / (L<<96 + amount * sqrtP)).
		numerator := new(big.Int).Lsh(liquidity, 96)
		denominator := new(big.Int).Add(numerator, new(big.Int).Mul(amountIn, sqrtPrice))
		return MulDivRoundingUp(numerator, sqrtPrice, denominator), nil
	}
	// Token1 in: price moves up. next = sqrtP + amount * Q96 / L.
	quotient := MulDiv(amountIn, Q96, liquidity)
	return new(big.Int).Add(sqrtPrice, quotient), nil
}
