package model

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	ngerr "github.com/liqshift/liqshift-go/errors"
)

// NativeToken is the placeholder address reserved for a chain's gas asset.
var NativeToken = common.Address{}

// Variant identifies the AMM protocol family a pool belongs to.
type Variant uint8

const (
	VariantV3 Variant = iota + 1
	VariantV4
	VariantAerodrome
)

func (v Variant) String() string {
	switch v {
	case VariantV3:
		return "v3"
	case VariantV4:
		return "v4"
	case VariantAerodrome:
		return "aerodrome"
	default:
		return "unknown"
	}
}

func (v Variant) Valid() bool {
	return v == VariantV3 || v == VariantV4 || v == VariantAerodrome
}

// MigrationMethod selects how the source position's assets travel across the
// bridge: consolidated into one bridgeable asset, or as two independent
// routes. The numeric values are part of the migration id layout.
type MigrationMethod uint8

const (
	MethodSingleToken MigrationMethod = 1
	MethodDualToken   MigrationMethod = 2
)

func (m MigrationMethod) String() string {
	switch m {
	case MethodSingleToken:
		return "single-token"
	case MethodDualToken:
		return "dual-token"
	default:
		return "unknown"
	}
}

func (m MigrationMethod) Valid() bool {
	return m == MethodSingleToken || m == MethodDualToken
}

// Pool is a snapshot of a concentrated-liquidity pool.
type Pool struct {
	ChainID      uint64
	Token0       common.Address
	Token1       common.Address
	Fee          uint32
	TickSpacing  int32
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
	Tick         int32
	Variant      Variant
	// Hooks is set only for v4 pools.
	Hooks common.Address
}

// Validate checks the canonical-ordering and identity invariants.
func (p Pool) Validate() error {
	if !p.Variant.Valid() {
		return ngerr.Newf(ngerr.KindValidation, "unsupported pool variant %d", p.Variant)
	}
	if p.Token0 == p.Token1 {
		return ngerr.New(ngerr.KindValidation, "pool token0 and token1 are identical")
	}
	if bytes.Compare(p.Token0.Bytes(), p.Token1.Bytes()) > 0 {
		return ngerr.Newf(ngerr.KindValidation, "pool tokens out of canonical order: %s > %s", p.Token0, p.Token1)
	}
	if p.SqrtPriceX96 == nil || p.SqrtPriceX96.Sign() <= 0 {
		return ngerr.New(ngerr.KindValidation, "pool sqrt price must be positive")
	}
	if p.Liquidity == nil || p.Liquidity.Sign() < 0 {
		return ngerr.New(ngerr.KindValidation, "pool liquidity must be non-negative")
	}
	return nil
}

// HasToken reports whether addr is one of the pool's tokens.
func (p Pool) HasToken(addr common.Address) bool {
	return p.Token0 == addr || p.Token1 == addr
}

// InRange reports whether the pool's current tick lies inside [lower, upper).
func (p Pool) InRange(lower, upper int32) bool {
	return p.Tick >= lower && p.Tick < upper
}

// Position is a planned or existing concentrated-liquidity position.
// Instances are immutable once produced: a re-plan supersedes, never mutates.
type Position struct {
	Pool      Pool
	TickLower int32
	TickUpper int32
	Liquidity *big.Int
	Amount0   *big.Int
	Amount1   *big.Int
	// Amount0Min/Amount1Min are the contract-enforced slippage floors derived
	// from the worst-case plan; nil when no floor applies.
	Amount0Min *big.Int
	Amount1Min *big.Int
	// Refunds are budget left unconsumed by the plan.
	Amount0Refund *big.Int
	Amount1Refund *big.Int
}

// NewPosition copies all amounts so later arithmetic on the inputs cannot
// reach into the position.
func NewPosition(pool Pool, tickLower, tickUpper int32, liquidity, amount0, amount1 *big.Int) Position {
	return Position{
		Pool:      pool,
		TickLower: tickLower,
		TickUpper: tickUpper,
		Liquidity: cloneOrZero(liquidity),
		Amount0:   cloneOrZero(amount0),
		Amount1:   cloneOrZero(amount1),
	}
}

// Zero reports whether the position carries no liquidity.
func (p Position) Zero() bool {
	return p.Liquidity == nil || p.Liquidity.Sign() == 0
}

// Route is one quoted bridge transfer of a single asset.
type Route struct {
	InputToken         common.Address
	OutputToken        common.Address
	InputAmount        *big.Int
	OutputAmount       *big.Int
	MinOutputAmount    *big.Int
	QuoteTimestamp     uint32
	FillDeadline       uint32
	DestinationSettler common.Address
}

func (r Route) Validate() error {
	if r.InputAmount == nil || r.InputAmount.Sign() <= 0 {
		return ngerr.New(ngerr.KindValidation, "route input amount must be positive")
	}
	if r.OutputAmount == nil || r.OutputAmount.Sign() < 0 {
		return ngerr.New(ngerr.KindValidation, "route output amount must be non-negative")
	}
	if r.MinOutputAmount == nil || r.MinOutputAmount.Sign() < 0 {
		return ngerr.New(ngerr.KindValidation, "route min output amount must be non-negative")
	}
	if r.MinOutputAmount.Cmp(r.OutputAmount) > 0 {
		return ngerr.New(ngerr.KindValidation, "route min output amount exceeds quoted output amount")
	}
	if r.DestinationSettler == (common.Address{}) {
		return ngerr.New(ngerr.KindValidation, "route destination settler is required")
	}
	return nil
}

// Fees is a derived fee share of a bridged output. It is never stored apart
// from the route that produced it.
type Fees struct {
	Bps     uint16
	Amount0 *big.Int
	Amount1 *big.Int
}

func cloneOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
