// Package clmath implements the concentrated-liquidity arithmetic the
// planner needs: tick to sqrt-price conversion, liquidity from token
// amounts and back, and spot-price projection for swap inputs.
//
// All amount-sizing divisions round down so a plan can never claim more of a
// budget than is actually available.
package clmath

import (
	"errors"
	"math/big"
)

var (
	// Q96 is the UQ64.96 fixed-point representation of 1.
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)
	// Q192 is Q96 squared, used when converting amounts through a price.
	Q192 = new(big.Int).Lsh(big.NewInt(1), 192)

	ErrLiquidityZero = errors.New("liquidity must be greater than zero")
	ErrSqrtPriceZero = errors.New("sqrt price must be greater than zero")

	one = big.NewInt(1)
)

// MulDiv returns floor(a * b / denominator).
func MulDiv(a, b, denominator *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Div(product, denominator)
}

// MulDivRoundingUp returns ceil(a * b / denominator).
func MulDivRoundingUp(a, b, denominator *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	quotient, rem := new(big.Int).DivMod(product, denominator, new(big.Int))
	if rem.Sign() > 0 {
		quotient.Add(quotient, one)
	}
	return quotient
}

// sortRatios returns the two sqrt ratios in ascending order.
func sortRatios(a, b *big.Int) (*big.Int, *big.Int) {
	if a.Cmp(b) > 0 {
		return b, a
	}
	return a, b
}

// clampRatio bounds p into [lower, upper].
func clampRatio(p, lower, upper *big.Int) *big.Int {
	if p.Cmp(lower) < 0 {
		return lower
	}
	if p.Cmp(upper) > 0 {
		return upper
	}
	return p
}
