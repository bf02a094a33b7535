package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SourcePosition is the on-chain state of the position being migrated:
// principal liquidity over [TickLower, TickUpper) plus uncollected fees.
type SourcePosition struct {
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	TickLower   int32
	TickUpper   int32
	Liquidity   *big.Int
	TokensOwed0 *big.Int
	TokensOwed1 *big.Int
}

// Withdrawal is a claimable settler-side record. A zero Recipient means the
// entry is absent or already withdrawn.
type Withdrawal struct {
	Recipient common.Address
	Token     common.Address
	Amount    *big.Int
}
