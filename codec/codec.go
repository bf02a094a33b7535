// Package codec serializes migration parameters into the exact ABI byte
// layouts the on-chain migrator and settler contracts decode. Decoding is
// the inverse of encoding for every valid value; the layouts are nested
// (dynamic bytes inside tuples), so everything runs through go-ethereum's
// head/tail ABI encoder rather than hand-packed bytes.
package codec

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/migrationid"
)

var (
	typeAddress = mustType("address", nil)
	typeUint16  = mustType("uint16", nil)
	typeUint24  = mustType("uint24", nil)
	typeUint32  = mustType("uint32", nil)
	typeUint160 = mustType("uint160", nil)
	typeUint256 = mustType("uint256", nil)
	typeInt24   = mustType("int24", nil)
	typeBytes   = mustType("bytes", nil)
	typeBytes32 = mustType("bytes32", nil)

	tokenRouteType = mustType("tuple[]", []abi.ArgumentMarshaling{
		{Name: "inputToken", Type: "address"},
		{Name: "minAmountOut", Type: "uint256"},
		{Name: "route", Type: "bytes"},
	})

	v3MintArgs = abi.Arguments{
		{Name: "token0", Type: typeAddress},
		{Name: "token1", Type: typeAddress},
		{Name: "fee", Type: typeUint24},
		{Name: "tickLower", Type: typeInt24},
		{Name: "tickUpper", Type: typeInt24},
		{Name: "sqrtPriceX96", Type: typeUint160},
		{Name: "amount0Min", Type: typeUint256},
		{Name: "amount1Min", Type: typeUint256},
		{Name: "recipient", Type: typeAddress},
		{Name: "deadline", Type: typeUint256},
	}

	v4MintArgs = abi.Arguments{
		{Name: "currency0", Type: typeAddress},
		{Name: "currency1", Type: typeAddress},
		{Name: "fee", Type: typeUint24},
		{Name: "tickSpacing", Type: typeInt24},
		{Name: "hooks", Type: typeAddress},
		{Name: "tickLower", Type: typeInt24},
		{Name: "tickUpper", Type: typeInt24},
		{Name: "sqrtPriceX96", Type: typeUint160},
		{Name: "amount0Min", Type: typeUint256},
		{Name: "amount1Min", Type: typeUint256},
		{Name: "recipient", Type: typeAddress},
		{Name: "deadline", Type: typeUint256},
	}

	aerodromeMintArgs = abi.Arguments{
		{Name: "token0", Type: typeAddress},
		{Name: "token1", Type: typeAddress},
		{Name: "tickSpacing", Type: typeInt24},
		{Name: "tickLower", Type: typeInt24},
		{Name: "tickUpper", Type: typeInt24},
		{Name: "sqrtPriceX96", Type: typeUint160},
		{Name: "amount0Min", Type: typeUint256},
		{Name: "amount1Min", Type: typeUint256},
		{Name: "recipient", Type: typeAddress},
		{Name: "deadline", Type: typeUint256},
	}

	settlementArgs = abi.Arguments{
		{Name: "recipient", Type: typeAddress},
		{Name: "senderShareBps", Type: typeUint16},
		{Name: "senderFeeRecipient", Type: typeAddress},
		{Name: "mintParams", Type: typeBytes},
	}

	migratorArgs = abi.Arguments{
		{Name: "chainId", Type: typeUint32},
		{Name: "settler", Type: typeAddress},
		{Name: "tokenRoutes", Type: tokenRouteType},
		{Name: "settlementParams", Type: typeBytes},
	}

	settlerMessageArgs = abi.Arguments{
		{Name: "migrationId", Type: typeBytes32},
		{Name: "settlementParams", Type: typeBytes},
	}
)

func mustType(t string, components []abi.ArgumentMarshaling) abi.Type {
	typ, err := abi.NewType(t, "", components)
	if err != nil {
		panic("codec: bad abi type " + t + ": " + err.Error())
	}
	return typ
}

// SettlementParams instruct the destination settler how to pay out a filled
// migration. MintParams is the already-encoded, variant-specific inner
// payload.
type SettlementParams struct {
	Recipient          common.Address
	SenderShareBps     uint16
	SenderFeeRecipient common.Address
	MintParams         []byte
}

// TokenRoute is the per-asset bridging instruction carried inside the
// migrator message.
type TokenRoute struct {
	InputToken   common.Address
	MinAmountOut *big.Int
	Route        []byte
}

// MigratorParams is the top-level payload handed to the source-chain
// migrator contract.
type MigratorParams struct {
	ChainID          uint32
	Settler          common.Address
	TokenRoutes      []TokenRoute
	SettlementParams []byte
}

// EncodeSettlementParams packs params into the settler's ABI layout.
func EncodeSettlementParams(params SettlementParams) ([]byte, error) {
	data, err := settlementArgs.Pack(
		params.Recipient,
		params.SenderShareBps,
		params.SenderFeeRecipient,
		params.MintParams,
	)
	if err != nil {
		return nil, ngerr.Wrap(ngerr.KindInternal, "encode settlement params", err)
	}
	return data, nil
}

// DecodeSettlementParams is the inverse of EncodeSettlementParams.
func DecodeSettlementParams(data []byte) (SettlementParams, error) {
	values, err := settlementArgs.Unpack(data)
	if err != nil {
		return SettlementParams{}, ngerr.Wrap(ngerr.KindValidation, "decode settlement params", err)
	}
	return SettlementParams{
		Recipient:          values[0].(common.Address),
		SenderShareBps:     values[1].(uint16),
		SenderFeeRecipient: values[2].(common.Address),
		MintParams:         values[3].([]byte),
	}, nil
}

// EncodeMigratorParams packs the migrator payload and the inner settler
// message. The settler message is the value the bridge's cross-chain message
// field must carry verbatim; the destination settler decodes it only after a
// successful fill.
func EncodeMigratorParams(id migrationid.ID, params MigratorParams) (migratorMessage, settlerMessage []byte, err error) {
	if len(params.TokenRoutes) == 0 {
		return nil, nil, ngerr.New(ngerr.KindValidation, "migrator params need at least one token route")
	}

	routes := make([]TokenRoute, len(params.TokenRoutes))
	for i, route := range params.TokenRoutes {
		routes[i] = TokenRoute{
			InputToken:   route.InputToken,
			MinAmountOut: bigOrZero(route.MinAmountOut),
			Route:        route.Route,
		}
	}

	migratorMessage, err = migratorArgs.Pack(
		params.ChainID,
		params.Settler,
		routes,
		params.SettlementParams,
	)
	if err != nil {
		return nil, nil, ngerr.Wrap(ngerr.KindInternal, "encode migrator params", err)
	}

	settlerMessage, err = settlerMessageArgs.Pack([32]byte(id), params.SettlementParams)
	if err != nil {
		return nil, nil, ngerr.Wrap(ngerr.KindInternal, "encode settler message", err)
	}
	return migratorMessage, settlerMessage, nil
}

// DecodeMigratorParams is the inverse of the migrator half of
// EncodeMigratorParams.
func DecodeMigratorParams(data []byte) (MigratorParams, error) {
	values, err := migratorArgs.Unpack(data)
	if err != nil {
		return MigratorParams{}, ngerr.Wrap(ngerr.KindValidation, "decode migrator params", err)
	}

	routes := *abi.ConvertType(values[2], new([]TokenRoute)).(*[]TokenRoute)

	return MigratorParams{
		ChainID:          values[0].(uint32),
		Settler:          values[1].(common.Address),
		TokenRoutes:      routes,
		SettlementParams: values[3].([]byte),
	}, nil
}

// DecodeSettlerMessage splits a settler message back into the migration id
// and the settlement params bytes.
func DecodeSettlerMessage(data []byte) (migrationid.ID, []byte, error) {
	values, err := settlerMessageArgs.Unpack(data)
	if err != nil {
		return migrationid.ID{}, nil, ngerr.Wrap(ngerr.KindValidation, "decode settler message", err)
	}
	return migrationid.ID(values[0].([32]byte)), values[1].([]byte), nil
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
