package codec

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	ngerr "github.com/liqshift/liqshift-go/errors"
)

var bridgeRouteArgs = abi.Arguments{
	{Name: "outputToken", Type: typeAddress},
	{Name: "outputAmount", Type: typeUint256},
	{Name: "quoteTimestamp", Type: typeUint32},
	{Name: "fillDeadline", Type: typeUint32},
	{Name: "destinationSettler", Type: typeAddress},
}

// BridgeRoute is the per-asset sub-tuple carried as the dynamic `route`
// bytes inside a token route: everything the migrator contract needs to
// issue the bridge deposit besides the input token and amount floor, which
// live on the outer tuple.
type BridgeRoute struct {
	OutputToken        common.Address
	OutputAmount       *big.Int
	QuoteTimestamp     uint32
	FillDeadline       uint32
	DestinationSettler common.Address
}

// EncodeBridgeRoute packs route into the migrator's route-bytes layout.
func EncodeBridgeRoute(route BridgeRoute) ([]byte, error) {
	data, err := bridgeRouteArgs.Pack(
		route.OutputToken,
		bigOrZero(route.OutputAmount),
		route.QuoteTimestamp,
		route.FillDeadline,
		route.DestinationSettler,
	)
	if err != nil {
		return nil, ngerr.Wrap(ngerr.KindInternal, "encode bridge route", err)
	}
	return data, nil
}

// DecodeBridgeRoute is the inverse of EncodeBridgeRoute.
func DecodeBridgeRoute(data []byte) (BridgeRoute, error) {
	values, err := bridgeRouteArgs.Unpack(data)
	if err != nil {
		return BridgeRoute{}, ngerr.Wrap(ngerr.KindValidation, "decode bridge route", err)
	}
	return BridgeRoute{
		OutputToken:        values[0].(common.Address),
		OutputAmount:       values[1].(*big.Int),
		QuoteTimestamp:     values[2].(uint32),
		FillDeadline:       values[3].(uint32),
		DestinationSettler: values[4].(common.Address),
	}, nil
}
