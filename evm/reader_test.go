package evm

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/migrationid"
	"github.com/liqshift/liqshift-go/model"
)

// stubBackend answers eth_call by method selector and eth_getStorageAt by
// slot hash.
type stubBackend struct {
	calls   map[string][]byte
	storage map[common.Hash][]byte
}

func (s *stubBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	selector := hex.EncodeToString(msg.Data[:4])
	out, ok := s.calls[selector]
	if !ok {
		return nil, nil
	}
	return out, nil
}

func (s *stubBackend) StorageAt(_ context.Context, _ common.Address, key common.Hash, _ *big.Int) ([]byte, error) {
	word, ok := s.storage[key]
	if !ok {
		return make([]byte, 32), nil
	}
	return word, nil
}

func packOutput(t *testing.T, method string, values ...any) []byte {
	t.Helper()
	out, err := poolABI.Methods[method].Outputs.Pack(values...)
	if err != nil {
		t.Fatalf("pack %s output: %v", method, err)
	}
	return out
}

func selector(method string) string {
	return hex.EncodeToString(poolABI.Methods[method].ID)
}

func TestReadPool(t *testing.T) {
	token0 := common.HexToAddress("0x4200000000000000000000000000000000000006")
	token1 := common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	sqrtPrice, _ := new(big.Int).SetString("79228162514264337593543950336", 10)

	backend := &stubBackend{calls: map[string][]byte{
		selector("token0"):      packOutput(t, "token0", token0),
		selector("token1"):      packOutput(t, "token1", token1),
		selector("fee"):         packOutput(t, "fee", big.NewInt(500)),
		selector("tickSpacing"): packOutput(t, "tickSpacing", big.NewInt(10)),
		selector("liquidity"):   packOutput(t, "liquidity", big.NewInt(1_000_000)),
		selector("slot0"): packOutput(t, "slot0",
			sqrtPrice, big.NewInt(0), uint16(0), uint16(1), uint16(1), uint8(0), true),
	}}

	pool, err := NewPoolReader(backend, 8453).ReadPool(context.Background(), common.HexToAddress("0x01"))
	if err != nil {
		t.Fatalf("ReadPool: %v", err)
	}
	if pool.Token0 != token0 || pool.Token1 != token1 {
		t.Fatalf("unexpected tokens %s/%s", pool.Token0, pool.Token1)
	}
	if pool.Fee != 500 || pool.TickSpacing != 10 || pool.Tick != 0 {
		t.Fatalf("unexpected pool params %+v", pool)
	}
	if pool.SqrtPriceX96.Cmp(sqrtPrice) != 0 {
		t.Fatalf("unexpected sqrt price %s", pool.SqrtPriceX96)
	}
	if pool.Liquidity.String() != "1000000" {
		t.Fatalf("unexpected liquidity %s", pool.Liquidity)
	}
	if pool.Variant != model.VariantV3 {
		t.Fatalf("unexpected variant %v", pool.Variant)
	}
}

func TestReadPoolAbsentContract(t *testing.T) {
	backend := &stubBackend{calls: map[string][]byte{}}
	_, err := NewPoolReader(backend, 1).ReadPool(context.Background(), common.HexToAddress("0x02"))
	if !ngerr.IsKind(err, ngerr.KindPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
}

func TestReadPosition(t *testing.T) {
	token0 := common.HexToAddress("0x4200000000000000000000000000000000000006")
	token1 := common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	out, err := managerABI.Methods["positions"].Outputs.Pack(
		big.NewInt(7), common.Address{}, token0, token1, big.NewInt(3000),
		big.NewInt(-200), big.NewInt(200), big.NewInt(5_000_000),
		big.NewInt(0), big.NewInt(0), big.NewInt(123), big.NewInt(456),
	)
	if err != nil {
		t.Fatalf("pack positions output: %v", err)
	}
	backend := &stubBackend{calls: map[string][]byte{
		hex.EncodeToString(managerABI.Methods["positions"].ID): out,
	}}

	pos, err := NewPositionReader(backend, common.HexToAddress("0x03")).ReadPosition(context.Background(), big.NewInt(42))
	if err != nil {
		t.Fatalf("ReadPosition: %v", err)
	}
	if pos.Token0 != token0 || pos.Token1 != token1 {
		t.Fatalf("unexpected tokens %s/%s", pos.Token0, pos.Token1)
	}
	if pos.Fee != 3000 || pos.TickLower != -200 || pos.TickUpper != 200 {
		t.Fatalf("unexpected range %+v", pos)
	}
	if pos.Liquidity.String() != "5000000" || pos.TokensOwed0.String() != "123" || pos.TokensOwed1.String() != "456" {
		t.Fatalf("unexpected amounts %+v", pos)
	}
}

func TestWithdrawalLookup(t *testing.T) {
	id := migrationid.Derive(8453, common.HexToAddress("0x0A"), model.MethodSingleToken, 1)
	slots := migrationid.WithdrawalSlots(id, 4)

	recipient := common.HexToAddress("0x1111111111111111111111111111111111111111")
	token := common.HexToAddress("0x4200000000000000000000000000000000000006")

	backend := &stubBackend{storage: map[common.Hash][]byte{
		slots[0]: common.BytesToHash(recipient.Bytes()).Bytes(),
		slots[1]: common.BytesToHash(token.Bytes()).Bytes(),
		slots[2]: common.BigToHash(big.NewInt(987654321)).Bytes(),
	}}

	lookup := NewWithdrawalLookup(backend, common.HexToAddress("0x0B"), 4)
	got, err := lookup.Lookup(context.Background(), id)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil {
		t.Fatal("expected a withdrawal record")
	}
	if got.Recipient != recipient || got.Token != token {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.Amount.String() != "987654321" {
		t.Fatalf("unexpected amount %s", got.Amount)
	}
}

func TestWithdrawalLookupAbsent(t *testing.T) {
	id := migrationid.Derive(1, common.HexToAddress("0x0A"), model.MethodDualToken, 2)
	lookup := NewWithdrawalLookup(&stubBackend{storage: map[common.Hash][]byte{}}, common.HexToAddress("0x0B"), 4)
	got, err := lookup.Lookup(context.Background(), id)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("expected absent record, got %+v", got)
	}
}
