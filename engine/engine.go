// Package engine orchestrates a cross-chain position migration: Start
// quotes the bridge routes for a source position, Settle plans the
// destination position against those routes and encodes the contract
// messages. Each attempt is either fully planned or rejected; the engine
// never retries and never produces a partial result.
package engine

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/feesplit"
	"github.com/liqshift/liqshift-go/model"
	"github.com/liqshift/liqshift-go/providers"
	"github.com/liqshift/liqshift-go/quotecache"
	"github.com/liqshift/liqshift-go/registry"
	"github.com/liqshift/liqshift-go/sourceswap"
)

// PositionReader fetches the source position being migrated.
type PositionReader interface {
	ReadPosition(ctx context.Context, tokenID *big.Int) (model.SourcePosition, error)
}

// PoolReader fetches a pool snapshot by address.
type PoolReader interface {
	ReadPool(ctx context.Context, pool common.Address) (model.Pool, error)
}

// NonceSource hands out the migrator nonce for the next attempt. It must
// track the on-chain migrator counter or ids will desynchronize.
type NonceSource interface {
	Next(ctx context.Context) (uint64, error)
}

const (
	defaultSlippageBps       = 50
	defaultMaxPriceImpactBps = 100
	defaultMintDeadline      = 20 * time.Minute
)

type Config struct {
	SourceChainID uint64
	Migrator      common.Address
	Logger        zerolog.Logger
	// Clock is injected so quote TTLs and mint deadlines are testable.
	Clock             func() time.Time
	SlippageBps       uint16
	MaxPriceImpactBps uint64
	FeePolicy         feesplit.Policy
	QuoteTTL          time.Duration
	MintDeadline      time.Duration

	Registry         *registry.Registry
	Positions        PositionReader
	SourcePools      PoolReader
	DestinationPools PoolReader
	Bridge           providers.BridgeQuoter
	Swapper          providers.SwapQuoter
	Nonces           NonceSource
}

type Engine struct {
	cfg          Config
	log          zerolog.Logger
	now          func() time.Time
	sourceSwap   *sourceswap.Estimator
	bridgeQuotes *quotecache.Cache[providers.BridgeQuote]
	swapQuotes   *quotecache.Cache[providers.SwapQuote]
}

func New(cfg Config) (*Engine, error) {
	if cfg.SourceChainID == 0 {
		return nil, ngerr.New(ngerr.KindValidation, "engine requires a source chain id")
	}
	if cfg.Migrator == (common.Address{}) {
		return nil, ngerr.New(ngerr.KindValidation, "engine requires a migrator address")
	}
	if cfg.Registry == nil || cfg.Positions == nil || cfg.SourcePools == nil ||
		cfg.DestinationPools == nil || cfg.Bridge == nil || cfg.Swapper == nil || cfg.Nonces == nil {
		return nil, ngerr.New(ngerr.KindValidation, "engine requires all collaborators")
	}
	if err := cfg.FeePolicy.Validate(); err != nil {
		return nil, err
	}
	if cfg.SlippageBps == 0 {
		cfg.SlippageBps = defaultSlippageBps
	}
	if cfg.MaxPriceImpactBps == 0 {
		cfg.MaxPriceImpactBps = defaultMaxPriceImpactBps
	}
	if cfg.MintDeadline <= 0 {
		cfg.MintDeadline = defaultMintDeadline
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	e := &Engine{
		cfg:          cfg,
		log:          cfg.Logger.With().Str("component", "engine").Logger(),
		now:          now,
		bridgeQuotes: quotecache.New[providers.BridgeQuote](cfg.QuoteTTL, now),
		swapQuotes:   quotecache.New[providers.SwapQuote](cfg.QuoteTTL, now),
	}
	e.sourceSwap = sourceswap.NewEstimator(&cachedSwapQuoter{engine: e})
	return e, nil
}

// quoteBridge coalesces identical bridge quote requests through the cache.
func (e *Engine) quoteBridge(ctx context.Context, req providers.BridgeQuoteRequest) (providers.BridgeQuote, error) {
	return e.bridgeQuotes.GetOrFetch(ctx, req.Fingerprint(), func(ctx context.Context) (providers.BridgeQuote, error) {
		return e.cfg.Bridge.QuoteBridge(ctx, req)
	})
}

// cachedSwapQuoter routes swap quotes through the engine's coalescing cache.
type cachedSwapQuoter struct {
	engine *Engine
}

func (q *cachedSwapQuoter) QuoteSwap(ctx context.Context, req providers.SwapQuoteRequest) (providers.SwapQuote, error) {
	return q.engine.swapQuotes.GetOrFetch(ctx, req.Fingerprint(), func(ctx context.Context) (providers.SwapQuote, error) {
		return q.engine.cfg.Swapper.QuoteSwap(ctx, req)
	})
}
