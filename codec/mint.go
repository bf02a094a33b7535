package codec

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/model"
)

// MintParams is the sealed set of variant-specific mint instructions. The
// variant is an explicit tag, never inferred from which fields happen to be
// present.
type MintParams interface {
	Variant() model.Variant
	sealedMintParams()
}

// V3MintParams targets a Uniswap v3-style position manager.
type V3MintParams struct {
	Token0       common.Address
	Token1       common.Address
	Fee          uint32
	TickLower    int32
	TickUpper    int32
	SqrtPriceX96 *big.Int
	Amount0Min   *big.Int
	Amount1Min   *big.Int
	Recipient    common.Address
	Deadline     *big.Int
}

func (V3MintParams) Variant() model.Variant { return model.VariantV3 }
func (V3MintParams) sealedMintParams()      {}

// V4MintParams targets a Uniswap v4-style position manager; the pool key
// carries tick spacing and a hooks address in addition to the fee.
type V4MintParams struct {
	Currency0    common.Address
	Currency1    common.Address
	Fee          uint32
	TickSpacing  int32
	Hooks        common.Address
	TickLower    int32
	TickUpper    int32
	SqrtPriceX96 *big.Int
	Amount0Min   *big.Int
	Amount1Min   *big.Int
	Recipient    common.Address
	Deadline     *big.Int
}

func (V4MintParams) Variant() model.Variant { return model.VariantV4 }
func (V4MintParams) sealedMintParams()      {}

// AerodromeMintParams targets an Aerodrome slipstream position manager,
// which keys pools by tick spacing instead of fee tier.
type AerodromeMintParams struct {
	Token0       common.Address
	Token1       common.Address
	TickSpacing  int32
	TickLower    int32
	TickUpper    int32
	SqrtPriceX96 *big.Int
	Amount0Min   *big.Int
	Amount1Min   *big.Int
	Recipient    common.Address
	Deadline     *big.Int
}

func (AerodromeMintParams) Variant() model.Variant { return model.VariantAerodrome }
func (AerodromeMintParams) sealedMintParams()      {}

// EncodeMintParams packs params into the destination position manager's ABI
// layout for its variant.
func EncodeMintParams(params MintParams) ([]byte, error) {
	switch p := params.(type) {
	case V3MintParams:
		data, err := v3MintArgs.Pack(
			p.Token0, p.Token1,
			big.NewInt(int64(p.Fee)),
			big.NewInt(int64(p.TickLower)), big.NewInt(int64(p.TickUpper)),
			bigOrZero(p.SqrtPriceX96),
			bigOrZero(p.Amount0Min), bigOrZero(p.Amount1Min),
			p.Recipient, bigOrZero(p.Deadline),
		)
		if err != nil {
			return nil, ngerr.Wrap(ngerr.KindInternal, "encode v3 mint params", err)
		}
		return data, nil
	case V4MintParams:
		if p.TickSpacing == 0 {
			return nil, ngerr.New(ngerr.KindValidation, "v4 mint params require a tick spacing")
		}
		data, err := v4MintArgs.Pack(
			p.Currency0, p.Currency1,
			big.NewInt(int64(p.Fee)),
			big.NewInt(int64(p.TickSpacing)),
			p.Hooks,
			big.NewInt(int64(p.TickLower)), big.NewInt(int64(p.TickUpper)),
			bigOrZero(p.SqrtPriceX96),
			bigOrZero(p.Amount0Min), bigOrZero(p.Amount1Min),
			p.Recipient, bigOrZero(p.Deadline),
		)
		if err != nil {
			return nil, ngerr.Wrap(ngerr.KindInternal, "encode v4 mint params", err)
		}
		return data, nil
	case AerodromeMintParams:
		if p.TickSpacing == 0 {
			return nil, ngerr.New(ngerr.KindValidation, "aerodrome mint params require a tick spacing")
		}
		data, err := aerodromeMintArgs.Pack(
			p.Token0, p.Token1,
			big.NewInt(int64(p.TickSpacing)),
			big.NewInt(int64(p.TickLower)), big.NewInt(int64(p.TickUpper)),
			bigOrZero(p.SqrtPriceX96),
			bigOrZero(p.Amount0Min), bigOrZero(p.Amount1Min),
			p.Recipient, bigOrZero(p.Deadline),
		)
		if err != nil {
			return nil, ngerr.Wrap(ngerr.KindInternal, "encode aerodrome mint params", err)
		}
		return data, nil
	default:
		return nil, ngerr.New(ngerr.KindValidation, "mint params variant is missing or unsupported")
	}
}

// DecodeMintParams is the inverse of EncodeMintParams for the given variant.
func DecodeMintParams(variant model.Variant, data []byte) (MintParams, error) {
	switch variant {
	case model.VariantV3:
		values, err := v3MintArgs.Unpack(data)
		if err != nil {
			return nil, ngerr.Wrap(ngerr.KindValidation, "decode v3 mint params", err)
		}
		return V3MintParams{
			Token0:       values[0].(common.Address),
			Token1:       values[1].(common.Address),
			Fee:          uint32(values[2].(*big.Int).Uint64()),
			TickLower:    int32(values[3].(*big.Int).Int64()),
			TickUpper:    int32(values[4].(*big.Int).Int64()),
			SqrtPriceX96: values[5].(*big.Int),
			Amount0Min:   values[6].(*big.Int),
			Amount1Min:   values[7].(*big.Int),
			Recipient:    values[8].(common.Address),
			Deadline:     values[9].(*big.Int),
		}, nil
	case model.VariantV4:
		values, err := v4MintArgs.Unpack(data)
		if err != nil {
			return nil, ngerr.Wrap(ngerr.KindValidation, "decode v4 mint params", err)
		}
		return V4MintParams{
			Currency0:    values[0].(common.Address),
			Currency1:    values[1].(common.Address),
			Fee:          uint32(values[2].(*big.Int).Uint64()),
			TickSpacing:  int32(values[3].(*big.Int).Int64()),
			Hooks:        values[4].(common.Address),
			TickLower:    int32(values[5].(*big.Int).Int64()),
			TickUpper:    int32(values[6].(*big.Int).Int64()),
			SqrtPriceX96: values[7].(*big.Int),
			Amount0Min:   values[8].(*big.Int),
			Amount1Min:   values[9].(*big.Int),
			Recipient:    values[10].(common.Address),
			Deadline:     values[11].(*big.Int),
		}, nil
	case model.VariantAerodrome:
		values, err := aerodromeMintArgs.Unpack(data)
		if err != nil {
			return nil, ngerr.Wrap(ngerr.KindValidation, "decode aerodrome mint params", err)
		}
		return AerodromeMintParams{
			Token0:       values[0].(common.Address),
			Token1:       values[1].(common.Address),
			TickSpacing:  int32(values[2].(*big.Int).Int64()),
			TickLower:    int32(values[3].(*big.Int).Int64()),
			TickUpper:    int32(values[4].(*big.Int).Int64()),
			SqrtPriceX96: values[5].(*big.Int),
			Amount0Min:   values[6].(*big.Int),
			Amount1Min:   values[7].(*big.Int),
			Recipient:    values[8].(common.Address),
			Deadline:     values[9].(*big.Int),
		}, nil
	default:
		return nil, ngerr.Newf(ngerr.KindValidation, "unsupported mint params variant %d", variant)
	}
}
