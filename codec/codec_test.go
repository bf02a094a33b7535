package codec

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/migrationid"
	"github.com/liqshift/liqshift-go/model"
)

var (
	addrA = common.HexToAddress("0x4200000000000000000000000000000000000006")
	addrB = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	addrC = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func TestSettlementParamsRoundTrip(t *testing.T) {
	params := SettlementParams{
		Recipient:          addrA,
		SenderShareBps:     250,
		SenderFeeRecipient: addrB,
		MintParams:         []byte{0xde, 0xad, 0xbe, 0xef},
	}
	data, err := EncodeSettlementParams(params)
	require.NoError(t, err)

	got, err := DecodeSettlementParams(data)
	require.NoError(t, err)
	require.Equal(t, params, got)
}

func TestMintParamsRoundTripAllVariants(t *testing.T) {
	sqrtPrice, _ := new(big.Int).SetString("79228162514264337593543950336", 10)
	cases := []MintParams{
		V3MintParams{
			Token0: addrA, Token1: addrB, Fee: 500,
			TickLower: -200, TickUpper: 200,
			SqrtPriceX96: sqrtPrice,
			Amount0Min:   big.NewInt(1), Amount1Min: big.NewInt(2),
			Recipient: addrC, Deadline: big.NewInt(1756383600),
		},
		V4MintParams{
			Currency0: addrA, Currency1: addrB, Fee: 3000, TickSpacing: 60,
			Hooks:     addrC,
			TickLower: -120, TickUpper: 120,
			SqrtPriceX96: sqrtPrice,
			Amount0Min:   big.NewInt(10), Amount1Min: big.NewInt(20),
			Recipient: addrC, Deadline: big.NewInt(1756383600),
		},
		AerodromeMintParams{
			Token0: addrA, Token1: addrB, TickSpacing: 100,
			TickLower: -300, TickUpper: 400,
			SqrtPriceX96: sqrtPrice,
			Amount0Min:   big.NewInt(0), Amount1Min: big.NewInt(0),
			Recipient: addrC, Deadline: big.NewInt(1756383600),
		},
	}

	for _, params := range cases {
		data, err := EncodeMintParams(params)
		require.NoError(t, err)

		got, err := DecodeMintParams(params.Variant(), data)
		require.NoError(t, err)
		require.Equal(t, params.Variant(), got.Variant())

		reencoded, err := EncodeMintParams(got)
		require.NoError(t, err)
		require.True(t, bytes.Equal(data, reencoded), "re-encode must be byte-identical for %s", params.Variant())
	}
}

func TestEncodeMintParamsRequiresTickSpacing(t *testing.T) {
	_, err := EncodeMintParams(V4MintParams{Currency0: addrA, Currency1: addrB})
	require.True(t, ngerr.IsKind(err, ngerr.KindValidation))

	_, err = EncodeMintParams(AerodromeMintParams{Token0: addrA, Token1: addrB})
	require.True(t, ngerr.IsKind(err, ngerr.KindValidation))
}

func TestEncodeMintParamsRejectsNil(t *testing.T) {
	_, err := EncodeMintParams(nil)
	require.True(t, ngerr.IsKind(err, ngerr.KindValidation))
}

func TestMigratorParamsRoundTrip(t *testing.T) {
	id := migrationid.Derive(8453, addrC, model.MethodDualToken, 41)
	routeData, err := EncodeBridgeRoute(BridgeRoute{
		OutputToken:        addrA,
		OutputAmount:       big.NewInt(987654321),
		QuoteTimestamp:     1756380000,
		FillDeadline:       1756383600,
		DestinationSettler: addrB,
	})
	require.NoError(t, err)

	params := MigratorParams{
		ChainID: 8453,
		Settler: addrB,
		TokenRoutes: []TokenRoute{
			{InputToken: addrA, MinAmountOut: big.NewInt(100), Route: routeData},
			{InputToken: addrB, MinAmountOut: big.NewInt(200), Route: []byte{0x01}},
		},
		SettlementParams: []byte{0xaa, 0xbb},
	}

	migratorMsg, settlerMsg, err := EncodeMigratorParams(id, params)
	require.NoError(t, err)

	got, err := DecodeMigratorParams(migratorMsg)
	require.NoError(t, err)
	require.Equal(t, params, got)

	gotID, settlement, err := DecodeSettlerMessage(settlerMsg)
	require.NoError(t, err)
	require.Equal(t, id, gotID)
	require.Equal(t, params.SettlementParams, settlement)
}

func TestEncodeMigratorParamsRequiresRoutes(t *testing.T) {
	_, _, err := EncodeMigratorParams(migrationid.ID{}, MigratorParams{ChainID: 1, Settler: addrA})
	require.True(t, ngerr.IsKind(err, ngerr.KindValidation))
}

func TestBridgeRouteRoundTrip(t *testing.T) {
	route := BridgeRoute{
		OutputToken:        addrB,
		OutputAmount:       big.NewInt(1),
		QuoteTimestamp:     1,
		FillDeadline:       2,
		DestinationSettler: addrC,
	}
	data, err := EncodeBridgeRoute(route)
	require.NoError(t, err)

	got, err := DecodeBridgeRoute(data)
	require.NoError(t, err)
	require.Equal(t, route, got)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeSettlementParams([]byte{0x01, 0x02})
	require.True(t, ngerr.IsKind(err, ngerr.KindValidation))

	_, err = DecodeMigratorParams(nil)
	require.True(t, ngerr.IsKind(err, ngerr.KindValidation))

	_, _, err = DecodeSettlerMessage([]byte{0xff})
	require.True(t, ngerr.IsKind(err, ngerr.KindValidation))

	_, err = DecodeMintParams(model.Variant(9), nil)
	require.True(t, ngerr.IsKind(err, ngerr.KindValidation))
}
