// Package registry carries the chain table: per-chain wrapped-native
// assets and migrator/settler deployments, with a YAML overlay and
// environment overrides on top of the built-in defaults.
package registry

import (
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ngerr "github.com/liqshift/liqshift-go/errors"
)

type Chain struct {
	ChainID       uint64
	Name          string
	WrappedNative common.Address
	Migrator      common.Address
	Settler       common.Address
}

// Canonical deployments. Overlays extend or replace entries chain-by-chain.
var defaultChains = map[uint64]Chain{
	1: {
		ChainID:       1,
		Name:          "ethereum",
		WrappedNative: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
	},
	10: {
		ChainID:       10,
		Name:          "optimism",
		WrappedNative: common.HexToAddress("0x4200000000000000000000000000000000000006"),
	},
	130: {
		ChainID:       130,
		Name:          "unichain",
		WrappedNative: common.HexToAddress("0x4200000000000000000000000000000000000006"),
	},
	8453: {
		ChainID:       8453,
		Name:          "base",
		WrappedNative: common.HexToAddress("0x4200000000000000000000000000000000000006"),
	},
	42161: {
		ChainID:       42161,
		Name:          "arbitrum",
		WrappedNative: common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"),
	},
}

type Registry struct {
	chains map[uint64]Chain
}

type fileOverlay struct {
	Chains []struct {
		ChainID       uint64 `yaml:"chain_id"`
		Name          string `yaml:"name"`
		WrappedNative string `yaml:"wrapped_native"`
		Migrator      string `yaml:"migrator"`
		Settler       string `yaml:"settler"`
	} `yaml:"chains"`
}

// Load builds the registry from defaults, an optional YAML overlay, and
// LIQSHIFT_MIGRATOR_<chainID> / LIQSHIFT_SETTLER_<chainID> environment
// variables (a .env file is honored when present). Environment entries may
// name chains absent from both the defaults and the overlay.
func Load(overlayPath string) (*Registry, error) {
	_ = godotenv.Load()

	chains := make(map[uint64]Chain, len(defaultChains))
	for id, chain := range defaultChains {
		chains[id] = chain
	}

	if overlayPath != "" {
		if err := applyOverlay(overlayPath, chains); err != nil {
			return nil, err
		}
	}
	applyEnv(chains)

	return &Registry{chains: chains}, nil
}

func applyOverlay(path string, chains map[uint64]Chain) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ngerr.Wrap(ngerr.KindValidation, "read registry overlay", err)
	}
	var overlay fileOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return ngerr.Wrap(ngerr.KindValidation, "parse registry overlay", err)
	}
	for _, entry := range overlay.Chains {
		if entry.ChainID == 0 {
			return ngerr.New(ngerr.KindValidation, "registry overlay entry is missing chain_id")
		}
		chain := chains[entry.ChainID]
		chain.ChainID = entry.ChainID
		if entry.Name != "" {
			chain.Name = entry.Name
		}
		var err error
		if chain.WrappedNative, err = overlayAddress(entry.WrappedNative, chain.WrappedNative); err != nil {
			return err
		}
		if chain.Migrator, err = overlayAddress(entry.Migrator, chain.Migrator); err != nil {
			return err
		}
		if chain.Settler, err = overlayAddress(entry.Settler, chain.Settler); err != nil {
			return err
		}
		chains[entry.ChainID] = chain
	}
	return nil
}

func overlayAddress(raw string, current common.Address) (common.Address, error) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return current, nil
	}
	if !common.IsHexAddress(clean) {
		return common.Address{}, ngerr.Newf(ngerr.KindValidation, "registry overlay address %q is not a valid EVM address", clean)
	}
	return common.HexToAddress(clean), nil
}

const (
	envMigratorPrefix = "LIQSHIFT_MIGRATOR_"
	envSettlerPrefix  = "LIQSHIFT_SETTLER_"
)

// applyEnv scans the whole environment so deployments can be configured for
// chains the defaults and overlay never mention.
func applyEnv(chains map[uint64]Chain) {
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		migrator := strings.HasPrefix(key, envMigratorPrefix)
		if !migrator && !strings.HasPrefix(key, envSettlerPrefix) {
			continue
		}
		prefix := envSettlerPrefix
		if migrator {
			prefix = envMigratorPrefix
		}
		id, err := strconv.ParseUint(key[len(prefix):], 10, 64)
		if err != nil || id == 0 {
			continue
		}
		addr := strings.TrimSpace(value)
		if !common.IsHexAddress(addr) {
			continue
		}
		chain := chains[id]
		chain.ChainID = id
		if migrator {
			chain.Migrator = common.HexToAddress(addr)
		} else {
			chain.Settler = common.HexToAddress(addr)
		}
		chains[id] = chain
	}
}

// Chain returns the entry for chainID.
func (r *Registry) Chain(chainID uint64) (Chain, bool) {
	chain, ok := r.chains[chainID]
	return chain, ok
}

// WrappedNative returns the chain's wrapped-native asset, the zero address
// when the chain is unknown or has none configured.
func (r *Registry) WrappedNative(chainID uint64) common.Address {
	return r.chains[chainID].WrappedNative
}

// Migrator returns the migrator deployment for chainID.
func (r *Registry) Migrator(chainID uint64) (common.Address, bool) {
	chain, ok := r.chains[chainID]
	if !ok || chain.Migrator == (common.Address{}) {
		return common.Address{}, false
	}
	return chain.Migrator, true
}

// Settler returns the settler deployment for chainID.
func (r *Registry) Settler(chainID uint64) (common.Address, bool) {
	chain, ok := r.chains[chainID]
	if !ok || chain.Settler == (common.Address{}) {
		return common.Address{}, false
	}
	return chain.Settler, true
}
