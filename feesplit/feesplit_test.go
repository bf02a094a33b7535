package feesplit

import (
	"math/big"
	"testing"

	ngerr "github.com/liqshift/liqshift-go/errors"
)

func TestApplyConservation(t *testing.T) {
	policies := []Policy{
		{},
		{SenderShareBps: 100},
		{ProtocolShareBps: 30},
		{SenderShareBps: 250, ProtocolShareBps: 50, ProtocolShareOfSenderFeePct: 10},
		{SenderShareBps: 9_999, ProtocolShareBps: 1, ProtocolShareOfSenderFeePct: 100},
	}
	outputs := []string{"0", "1", "7", "1000000", "2010000000000000000", "340282366920938463463374607431768211455"}

	for _, policy := range policies {
		for _, raw := range outputs {
			output, _ := new(big.Int).SetString(raw, 10)
			split, err := Apply(output, policy)
			if err != nil {
				t.Fatalf("Apply(%s, %+v): %v", raw, policy, err)
			}
			sum := new(big.Int).Add(split.NetAvailable, split.ProtocolFee)
			sum.Add(sum, split.SenderFee)
			if sum.Cmp(output) != 0 {
				t.Fatalf("conservation broken for %s under %+v: net %s + protocol %s + sender %s != %s",
					raw, policy, split.NetAvailable, split.ProtocolFee, split.SenderFee, raw)
			}
			if split.NetAvailable.Sign() < 0 || split.ProtocolFee.Sign() < 0 || split.SenderFee.Sign() < 0 {
				t.Fatalf("negative component in %+v", split)
			}
		}
	}
}

func TestApplyTakesSharesOfGrossOutput(t *testing.T) {
	policy := Policy{SenderShareBps: 100, ProtocolShareBps: 50, ProtocolShareOfSenderFeePct: 10}
	split, err := Apply(big.NewInt(1_000_000), policy)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// senderGross = 10000, protocol takes 10% of it = 1000;
	// protocol base share = 5000.
	if split.SenderFee.String() != "9000" {
		t.Fatalf("unexpected sender fee %s", split.SenderFee)
	}
	if split.ProtocolFee.String() != "6000" {
		t.Fatalf("unexpected protocol fee %s", split.ProtocolFee)
	}
	if split.NetAvailable.String() != "985000" {
		t.Fatalf("unexpected net %s", split.NetAvailable)
	}
}

func TestPolicyCaps(t *testing.T) {
	cases := []Policy{
		{SenderShareBps: 10_001},
		{ProtocolShareBps: 10_001},
		{SenderShareBps: 6_000, ProtocolShareBps: 5_000},
		{ProtocolShareOfSenderFeePct: 101},
	}
	for _, policy := range cases {
		if err := policy.Validate(); !ngerr.IsKind(err, ngerr.KindBound) {
			t.Fatalf("policy %+v should violate bounds, got %v", policy, err)
		}
		if _, err := Apply(big.NewInt(1), policy); !ngerr.IsKind(err, ngerr.KindBound) {
			t.Fatalf("Apply with %+v should violate bounds, got %v", policy, err)
		}
	}
}

func TestApplyRejectsNegativeOutput(t *testing.T) {
	if _, err := Apply(big.NewInt(-1), Policy{}); !ngerr.IsKind(err, ngerr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
