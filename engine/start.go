package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/liqshift/liqshift-go/clmath"
	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/migrationid"
	"github.com/liqshift/liqshift-go/model"
	"github.com/liqshift/liqshift-go/providers"
)

// StartRequest identifies the source position and where its value goes.
// DestinationToken0/DestinationToken1 are the destination-chain
// representations of the bridged assets, in source token order; single-token
// migrations use only DestinationToken0.
type StartRequest struct {
	TokenID            *big.Int
	SourcePool         common.Address
	Method             model.MigrationMethod
	DestinationChainID uint64
	DestinationToken0  common.Address
	DestinationToken1  common.Address
	Recipient          common.Address
	// SlippageBps overrides the engine default when non-zero.
	SlippageBps uint16
}

type StartResult struct {
	MigrationID migrationid.ID
	Routes      []model.Route
}

// Start reads the source position, totals its migratable budget, quotes the
// bridge route(s) for the chosen method, and derives the attempt's id.
// Route order mirrors source token order and is externally observable.
func (e *Engine) Start(ctx context.Context, req StartRequest) (StartResult, error) {
	if err := validateStart(req, e.cfg.SourceChainID); err != nil {
		return StartResult{}, err
	}
	slippage := req.SlippageBps
	if slippage == 0 {
		slippage = e.cfg.SlippageBps
	}

	pos, err := e.cfg.Positions.ReadPosition(ctx, req.TokenID)
	if err != nil {
		return StartResult{}, err
	}
	pool, err := e.cfg.SourcePools.ReadPool(ctx, req.SourcePool)
	if err != nil {
		return StartResult{}, err
	}
	if verr := pool.Validate(); verr != nil {
		return StartResult{}, ngerr.Wrap(ngerr.KindCollaborator, "source pool snapshot", verr)
	}
	if pool.Token0 != pos.Token0 || pool.Token1 != pos.Token1 || pool.Fee != pos.Fee {
		return StartResult{}, ngerr.New(ngerr.KindValidation, "source pool does not match the position's pool")
	}

	budget0, budget1, err := positionBudgets(pool, pos)
	if err != nil {
		return StartResult{}, err
	}
	if budget0.Sign() == 0 && budget1.Sign() == 0 {
		return StartResult{}, ngerr.New(ngerr.KindPrecondition, "position has no liquidity or fees to migrate")
	}

	var routes []model.Route
	switch req.Method {
	case model.MethodSingleToken:
		routes, err = e.startSingleToken(ctx, req, pool, budget0, budget1, slippage)
	case model.MethodDualToken:
		routes, err = e.startDualToken(ctx, req, pool, budget0, budget1, slippage)
	}
	if err != nil {
		return StartResult{}, err
	}

	nonce, err := e.cfg.Nonces.Next(ctx)
	if err != nil {
		return StartResult{}, ngerr.Wrap(ngerr.KindCollaborator, "fetch migrator nonce", err)
	}
	id := migrationid.Derive(e.cfg.SourceChainID, e.cfg.Migrator, req.Method, nonce)

	e.log.Info().
		Str("migration_id", id.Hex()).
		Str("method", req.Method.String()).
		Uint64("destination_chain", req.DestinationChainID).
		Int("routes", len(routes)).
		Msg("migration planned")

	return StartResult{MigrationID: id, Routes: routes}, nil
}

func validateStart(req StartRequest, sourceChainID uint64) error {
	if req.TokenID == nil || req.TokenID.Sign() <= 0 {
		return ngerr.New(ngerr.KindValidation, "start requires a positive position token id")
	}
	if req.SourcePool == (common.Address{}) {
		return ngerr.New(ngerr.KindValidation, "start requires the source pool address")
	}
	if !req.Method.Valid() {
		return ngerr.Newf(ngerr.KindValidation, "unsupported migration method %d", req.Method)
	}
	if req.DestinationChainID == 0 || req.DestinationChainID == sourceChainID {
		return ngerr.New(ngerr.KindValidation, "destination chain must differ from the source chain")
	}
	if req.Recipient == (common.Address{}) {
		return ngerr.New(ngerr.KindValidation, "start requires a recipient")
	}
	if req.DestinationToken0 == (common.Address{}) {
		return ngerr.New(ngerr.KindValidation, "start requires the destination representation of the bridged asset")
	}
	if req.SlippageBps >= 10_000 {
		return ngerr.New(ngerr.KindValidation, "slippage bps must be below 10000")
	}
	return nil
}

// positionBudgets totals principal amounts at the current price plus
// uncollected fees, per token.
func positionBudgets(pool model.Pool, pos model.SourcePosition) (*big.Int, *big.Int, error) {
	sqrtLower, err := clmath.SqrtRatioAtTick(pos.TickLower)
	if err != nil {
		return nil, nil, ngerr.Wrap(ngerr.KindValidation, "position lower tick", err)
	}
	sqrtUpper, err := clmath.SqrtRatioAtTick(pos.TickUpper)
	if err != nil {
		return nil, nil, ngerr.Wrap(ngerr.KindValidation, "position upper tick", err)
	}
	liquidity := pos.Liquidity
	if liquidity == nil {
		liquidity = new(big.Int)
	}
	amount0, amount1 := clmath.AmountsForLiquidity(pool.SqrtPriceX96, sqrtLower, sqrtUpper, liquidity)
	if pos.TokensOwed0 != nil {
		amount0.Add(amount0, pos.TokensOwed0)
	}
	if pos.TokensOwed1 != nil {
		amount1.Add(amount1, pos.TokensOwed1)
	}
	return amount0, amount1, nil
}

// startSingleToken consolidates everything into the chain's bridgeable
// asset and quotes one bridge route for the combined amount.
func (e *Engine) startSingleToken(ctx context.Context, req StartRequest, pool model.Pool, budget0, budget1 *big.Int, slippage uint16) ([]model.Route, error) {
	wrapped := e.cfg.Registry.WrappedNative(e.cfg.SourceChainID)
	if wrapped == (common.Address{}) || !pool.HasToken(wrapped) {
		return nil, ngerr.New(ngerr.KindPrecondition, "position holds no bridgeable asset for a single-token migration")
	}

	bridgeableTotal, otherToken, otherTotal := budget0, pool.Token1, budget1
	if pool.Token1 == wrapped {
		bridgeableTotal, otherToken, otherTotal = budget1, pool.Token0, budget0
	}

	est, err := e.sourceSwap.Consolidate(ctx, e.cfg.SourceChainID, otherToken, wrapped, otherTotal, slippage)
	if err != nil {
		return nil, err
	}

	bridgeIn := new(big.Int).Add(bridgeableTotal, est.QuotedOut)
	route, err := e.quoteRoute(ctx, req, wrapped, req.DestinationToken0, bridgeIn, slippage)
	if err != nil {
		return nil, err
	}
	return []model.Route{route}, nil
}

// startDualToken bridges each asset on its own route, no swap, preserving
// source token order.
func (e *Engine) startDualToken(ctx context.Context, req StartRequest, pool model.Pool, budget0, budget1 *big.Int, slippage uint16) ([]model.Route, error) {
	if budget1.Sign() > 0 && req.DestinationToken1 == (common.Address{}) {
		return nil, ngerr.New(ngerr.KindValidation, "dual-token migration requires a destination representation for token1")
	}

	var routes []model.Route
	if budget0.Sign() > 0 {
		route, err := e.quoteRoute(ctx, req, pool.Token0, req.DestinationToken0, budget0, slippage)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	if budget1.Sign() > 0 {
		route, err := e.quoteRoute(ctx, req, pool.Token1, req.DestinationToken1, budget1, slippage)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}

func (e *Engine) quoteRoute(ctx context.Context, req StartRequest, inputToken, outputToken common.Address, amount *big.Int, slippage uint16) (model.Route, error) {
	quote, err := e.quoteBridge(ctx, providers.BridgeQuoteRequest{
		SourceChainID:      e.cfg.SourceChainID,
		DestinationChainID: req.DestinationChainID,
		InputToken:         inputToken,
		OutputToken:        outputToken,
		Amount:             amount,
		Recipient:          req.Recipient,
		SlippageBps:        slippage,
	})
	if err != nil {
		return model.Route{}, err
	}
	route := model.Route{
		InputToken:         inputToken,
		OutputToken:        outputToken,
		InputAmount:        new(big.Int).Set(amount),
		OutputAmount:       quote.OutputAmount,
		MinOutputAmount:    quote.MinOutputAmount,
		QuoteTimestamp:     quote.QuoteTimestamp,
		FillDeadline:       quote.FillDeadline,
		DestinationSettler: quote.DestinationSettler,
	}
	if err := route.Validate(); err != nil {
		return model.Route{}, ngerr.Wrap(ngerr.KindCollaborator, "bridge quote produced an invalid route", err)
	}
	return route, nil
}
