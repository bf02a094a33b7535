// Package evm reads pool, position, and settler-withdrawal state from an
// EVM node. Readers take a narrow call/storage backend so tests can stub
// the node; ethclient.Client satisfies it directly.
package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/model"
)

type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
}

type PoolReader struct {
	backend Backend
	chainID uint64
}

func NewPoolReader(backend Backend, chainID uint64) *PoolReader {
	return &PoolReader{backend: backend, chainID: chainID}
}

// ReadPool fetches a V3-compatible pool's static and slot0 state. A pool
// address with no deployed contract is a precondition failure; an
// uninitialized pool comes back with a zero SqrtPriceX96 for the caller to
// judge.
func (r *PoolReader) ReadPool(ctx context.Context, pool common.Address) (model.Pool, error) {
	token0, err := r.callAddress(ctx, pool, "token0")
	if err != nil {
		return model.Pool{}, err
	}
	token1, err := r.callAddress(ctx, pool, "token1")
	if err != nil {
		return model.Pool{}, err
	}
	fee, err := r.callBig(ctx, pool, "fee")
	if err != nil {
		return model.Pool{}, err
	}
	tickSpacing, err := r.callBig(ctx, pool, "tickSpacing")
	if err != nil {
		return model.Pool{}, err
	}
	liquidity, err := r.callBig(ctx, pool, "liquidity")
	if err != nil {
		return model.Pool{}, err
	}

	slot0, err := r.call(ctx, pool, "slot0")
	if err != nil {
		return model.Pool{}, err
	}
	sqrtPrice, ok := slot0[0].(*big.Int)
	if !ok {
		return model.Pool{}, ngerr.New(ngerr.KindCollaborator, "pool slot0 returned malformed sqrt price")
	}
	tick, ok := slot0[1].(*big.Int)
	if !ok {
		return model.Pool{}, ngerr.New(ngerr.KindCollaborator, "pool slot0 returned malformed tick")
	}

	return model.Pool{
		ChainID:      r.chainID,
		Token0:       token0,
		Token1:       token1,
		Fee:          uint32(fee.Uint64()),
		TickSpacing:  int32(tickSpacing.Int64()),
		SqrtPriceX96: new(big.Int).Set(sqrtPrice),
		Liquidity:    liquidity,
		Tick:         int32(tick.Int64()),
		Variant:      model.VariantV3,
	}, nil
}

type PositionReader struct {
	backend Backend
	manager common.Address
}

func NewPositionReader(backend Backend, manager common.Address) *PositionReader {
	return &PositionReader{backend: backend, manager: manager}
}

// ReadPosition fetches positions(tokenId) from the position manager.
func (r *PositionReader) ReadPosition(ctx context.Context, tokenID *big.Int) (model.SourcePosition, error) {
	callData, err := managerABI.Pack("positions", tokenID)
	if err != nil {
		return model.SourcePosition{}, ngerr.Wrap(ngerr.KindInternal, "pack positions calldata", err)
	}
	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &r.manager, Data: callData}, nil)
	if err != nil {
		return model.SourcePosition{}, ngerr.Wrap(ngerr.KindCollaborator, "read position", err)
	}
	if len(out) == 0 {
		return model.SourcePosition{}, ngerr.New(ngerr.KindPrecondition, "position manager returned no data")
	}
	decoded, err := managerABI.Unpack("positions", out)
	if err != nil || len(decoded) < 12 {
		return model.SourcePosition{}, ngerr.Wrap(ngerr.KindCollaborator, "decode positions response", err)
	}

	return model.SourcePosition{
		Token0:      decoded[2].(common.Address),
		Token1:      decoded[3].(common.Address),
		Fee:         uint32(decoded[4].(*big.Int).Uint64()),
		TickLower:   int32(decoded[5].(*big.Int).Int64()),
		TickUpper:   int32(decoded[6].(*big.Int).Int64()),
		Liquidity:   decoded[7].(*big.Int),
		TokensOwed0: decoded[10].(*big.Int),
		TokensOwed1: decoded[11].(*big.Int),
	}, nil
}

func (r *PoolReader) call(ctx context.Context, to common.Address, method string) ([]any, error) {
	callData, err := poolABI.Pack(method)
	if err != nil {
		return nil, ngerr.Wrap(ngerr.KindInternal, fmt.Sprintf("pack %s calldata", method), err)
	}
	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: callData}, nil)
	if err != nil {
		return nil, ngerr.Wrap(ngerr.KindCollaborator, fmt.Sprintf("call pool %s", method), err)
	}
	if len(out) == 0 {
		return nil, ngerr.New(ngerr.KindPrecondition, "pool contract returned no data")
	}
	decoded, err := poolABI.Unpack(method, out)
	if err != nil || len(decoded) == 0 {
		return nil, ngerr.Wrap(ngerr.KindCollaborator, fmt.Sprintf("decode pool %s response", method), err)
	}
	return decoded, nil
}

func (r *PoolReader) callAddress(ctx context.Context, to common.Address, method string) (common.Address, error) {
	decoded, err := r.call(ctx, to, method)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := decoded[0].(common.Address)
	if !ok {
		return common.Address{}, ngerr.Newf(ngerr.KindCollaborator, "pool %s returned a non-address value", method)
	}
	return addr, nil
}

func (r *PoolReader) callBig(ctx context.Context, to common.Address, method string) (*big.Int, error) {
	decoded, err := r.call(ctx, to, method)
	if err != nil {
		return nil, err
	}
	value, ok := decoded[0].(*big.Int)
	if !ok {
		return nil, ngerr.Newf(ngerr.KindCollaborator, "pool %s returned a non-integer value", method)
	}
	return value, nil
}
