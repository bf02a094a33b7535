package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestLoadDefaults(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := reg.WrappedNative(8453); got != common.HexToAddress("0x4200000000000000000000000000000000000006") {
		t.Fatalf("unexpected base wrapped native %s", got)
	}
	if _, ok := reg.Chain(999_999); ok {
		t.Fatal("unknown chain should not resolve")
	}
	if _, ok := reg.Migrator(1); ok {
		t.Fatal("default chains carry no migrator deployment")
	}
}

func TestLoadOverlayAndEnv(t *testing.T) {
	dir := t.TempDir()
	overlay := filepath.Join(dir, "chains.yaml")
	if err := os.WriteFile(overlay, []byte(`
chains:
  - chain_id: 8453
    migrator: "0x1111111111111111111111111111111111111111"
    settler: "0x2222222222222222222222222222222222222222"
  - chain_id: 7777
    name: devnet
    wrapped_native: "0x3333333333333333333333333333333333333333"
`), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("LIQSHIFT_SETTLER_8453", "0x4444444444444444444444444444444444444444")

	reg, err := Load(overlay)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	migrator, ok := reg.Migrator(8453)
	if !ok || migrator != common.HexToAddress("0x1111111111111111111111111111111111111111") {
		t.Fatalf("unexpected migrator %s ok=%v", migrator, ok)
	}
	// Env wins over overlay.
	settler, ok := reg.Settler(8453)
	if !ok || settler != common.HexToAddress("0x4444444444444444444444444444444444444444") {
		t.Fatalf("unexpected settler %s ok=%v", settler, ok)
	}
	chain, ok := reg.Chain(7777)
	if !ok || chain.Name != "devnet" {
		t.Fatalf("overlay should add chains, got %+v ok=%v", chain, ok)
	}
	if chain.WrappedNative != common.HexToAddress("0x3333333333333333333333333333333333333333") {
		t.Fatalf("unexpected devnet wrapped native %s", chain.WrappedNative)
	}
}

func TestLoadRejectsBadOverlayAddress(t *testing.T) {
	dir := t.TempDir()
	overlay := filepath.Join(dir, "chains.yaml")
	if err := os.WriteFile(overlay, []byte(`
chains:
  - chain_id: 1
    migrator: "not-an-address"
`), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	if _, err := Load(overlay); err == nil {
		t.Fatal("expected validation error for malformed address")
	}
}

func TestLoadMissingOverlayIsIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing overlay should be ignored: %v", err)
	}
}

func TestLoadEnvOnlyChain(t *testing.T) {
	t.Setenv("LIQSHIFT_MIGRATOR_59144", "0x5555555555555555555555555555555555555555")
	t.Setenv("LIQSHIFT_SETTLER_59144", "0x6666666666666666666666666666666666666666")

	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	chain, ok := reg.Chain(59144)
	if !ok || chain.ChainID != 59144 {
		t.Fatal("environment-only chain should be registered")
	}
	migrator, ok := reg.Migrator(59144)
	if !ok || migrator != common.HexToAddress("0x5555555555555555555555555555555555555555") {
		t.Fatalf("migrator not taken from the environment: %s", migrator)
	}
	settler, ok := reg.Settler(59144)
	if !ok || settler != common.HexToAddress("0x6666666666666666666666666666666666666666") {
		t.Fatalf("settler not taken from the environment: %s", settler)
	}
}
