package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/liqshift/liqshift-go/clmath"
	"github.com/liqshift/liqshift-go/codec"
	ngerr "github.com/liqshift/liqshift-go/errors"
	"github.com/liqshift/liqshift-go/feesplit"
	"github.com/liqshift/liqshift-go/migrationid"
	"github.com/liqshift/liqshift-go/model"
	"github.com/liqshift/liqshift-go/planner"
)

// PoolKey describes the destination pool independently of its on-chain
// state, which is all Settle has when the pool does not exist yet.
type PoolKey struct {
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	TickSpacing int32
	Variant     model.Variant
	Hooks       common.Address
}

type SettleRequest struct {
	MigrationID        migrationid.ID
	Method             model.MigrationMethod
	Routes             []model.Route
	DestinationChainID uint64
	PoolAddress        common.Address
	PoolKey            PoolKey
	TickLower          int32
	TickUpper          int32
	Recipient          common.Address
	SenderFeeRecipient common.Address
	// InitSqrtPriceX96 initializes an absent destination pool; required in
	// that case, ignored otherwise.
	InitSqrtPriceX96 *big.Int
	// MaxPriceImpactBps overrides the engine default when non-zero.
	MaxPriceImpactBps uint64
}

type SettleResult struct {
	Position        model.Position
	MigratorMessage []byte
	SettlerMessage  []byte
}

// Settle re-fetches the destination pool, plans the position from the
// routes' optimistic outputs, derives the contract floors from the
// guaranteed minimums, and encodes both contract messages. Any rejection is
// terminal for this attempt.
func (e *Engine) Settle(ctx context.Context, req SettleRequest) (SettleResult, error) {
	if err := validateSettle(req); err != nil {
		return SettleResult{}, err
	}
	maxImpact := req.MaxPriceImpactBps
	if maxImpact == 0 {
		maxImpact = e.cfg.MaxPriceImpactBps
	}

	pool, err := e.destinationPool(ctx, req)
	if err != nil {
		return SettleResult{}, err
	}

	best0, best1, worst0, worst1, err := e.routeBudgets(req.Routes, pool)
	if err != nil {
		return SettleResult{}, err
	}

	if req.Method == model.MethodDualToken && pool.Liquidity.Sign() == 0 && pool.InRange(req.TickLower, req.TickUpper) {
		return SettleResult{}, ngerr.New(ngerr.KindPrecondition, "destination pool has no liquidity")
	}

	bestReq := planner.Request{Pool: pool, TickLower: req.TickLower, TickUpper: req.TickUpper, Budget0: best0, Budget1: best1}
	worstReq := planner.Request{Pool: pool, TickLower: req.TickLower, TickUpper: req.TickUpper, Budget0: worst0, Budget1: worst1}

	var best, worst model.Position
	switch req.Method {
	case model.MethodSingleToken:
		bestPlan, err := planner.PlanRebalanced(bestReq)
		if err != nil {
			return SettleResult{}, err
		}
		if bestPlan.SwapIn.Sign() > 0 {
			impact, err := planner.ProjectedPriceImpact(pool, bestPlan.SwapZeroForOne, bestPlan.SwapIn)
			if err != nil {
				return SettleResult{}, err
			}
			if impact > maxImpact {
				return SettleResult{}, ngerr.Newf(ngerr.KindBound, "projected price impact %d bps exceeds tolerance %d bps", impact, maxImpact)
			}
		}
		worstPlan, err := planner.PlanRebalanced(worstReq)
		if err != nil {
			return SettleResult{}, err
		}
		best, worst = bestPlan.Position, worstPlan.Position
	case model.MethodDualToken:
		if best, err = planner.PlanFromBudgets(bestReq); err != nil {
			return SettleResult{}, err
		}
		if worst, err = planner.PlanFromBudgets(worstReq); err != nil {
			return SettleResult{}, err
		}
	}

	position := best
	position.Amount0Min = new(big.Int).Set(worst.Amount0)
	position.Amount1Min = new(big.Int).Set(worst.Amount1)

	migratorMessage, settlerMessage, err := e.encodeMessages(req, pool, position)
	if err != nil {
		return SettleResult{}, err
	}

	e.log.Info().
		Str("migration_id", req.MigrationID.Hex()).
		Str("method", req.Method.String()).
		Str("liquidity", position.Liquidity.String()).
		Msg("migration settled")

	return SettleResult{
		Position:        position,
		MigratorMessage: migratorMessage,
		SettlerMessage:  settlerMessage,
	}, nil
}

func validateSettle(req SettleRequest) error {
	if req.MigrationID == (migrationid.ID{}) {
		return ngerr.New(ngerr.KindValidation, "settle requires a migration id")
	}
	if !req.Method.Valid() {
		return ngerr.Newf(ngerr.KindValidation, "unsupported migration method %d", req.Method)
	}
	if len(req.Routes) == 0 {
		return ngerr.New(ngerr.KindValidation, "settle requires at least one route")
	}
	for _, route := range req.Routes {
		if err := route.Validate(); err != nil {
			return err
		}
	}
	if req.Method == model.MethodSingleToken && len(req.Routes) != 1 {
		return ngerr.Newf(ngerr.KindValidation, "single-token settle requires exactly one route, got %d", len(req.Routes))
	}
	if req.Method == model.MethodDualToken && len(req.Routes) > 2 {
		return ngerr.Newf(ngerr.KindValidation, "dual-token settle accepts at most two routes, got %d", len(req.Routes))
	}
	if req.DestinationChainID == 0 {
		return ngerr.New(ngerr.KindValidation, "settle requires the destination chain id")
	}
	if req.PoolAddress == (common.Address{}) {
		return ngerr.New(ngerr.KindValidation, "settle requires the destination pool address")
	}
	if !req.PoolKey.Variant.Valid() {
		return ngerr.Newf(ngerr.KindValidation, "unsupported destination pool variant %d", req.PoolKey.Variant)
	}
	if req.Recipient == (common.Address{}) {
		return ngerr.New(ngerr.KindValidation, "settle requires a recipient")
	}
	return nil
}

// destinationPool reads the pool, falling back to a synthetic snapshot at
// the supplied initialization price when the pool does not exist yet.
func (e *Engine) destinationPool(ctx context.Context, req SettleRequest) (model.Pool, error) {
	pool, err := e.cfg.DestinationPools.ReadPool(ctx, req.PoolAddress)
	if err == nil && pool.SqrtPriceX96 != nil && pool.SqrtPriceX96.Sign() > 0 {
		pool.ChainID = req.DestinationChainID
		pool.Variant = req.PoolKey.Variant
		pool.Hooks = req.PoolKey.Hooks
		if verr := pool.Validate(); verr != nil {
			return model.Pool{}, ngerr.Wrap(ngerr.KindCollaborator, "destination pool snapshot", verr)
		}
		return pool, nil
	}
	if err != nil && !ngerr.IsKind(err, ngerr.KindPrecondition) {
		return model.Pool{}, err
	}
	if req.InitSqrtPriceX96 == nil || req.InitSqrtPriceX96.Sign() <= 0 {
		return model.Pool{}, ngerr.New(ngerr.KindPrecondition, "destination pool is absent and no initialization price was supplied")
	}
	tick, err := clmath.TickAtSqrtRatio(req.InitSqrtPriceX96)
	if err != nil {
		return model.Pool{}, ngerr.Wrap(ngerr.KindValidation, "initialization price", err)
	}
	return model.Pool{
		ChainID:      req.DestinationChainID,
		Token0:       req.PoolKey.Token0,
		Token1:       req.PoolKey.Token1,
		Fee:          req.PoolKey.Fee,
		TickSpacing:  req.PoolKey.TickSpacing,
		SqrtPriceX96: new(big.Int).Set(req.InitSqrtPriceX96),
		Liquidity:    new(big.Int),
		Tick:         tick,
		Variant:      req.PoolKey.Variant,
		Hooks:        req.PoolKey.Hooks,
	}, nil
}

// routeBudgets applies the fee policy to each route's optimistic and
// guaranteed outputs and buckets the nets by destination token. Token order
// can flip between chains; matching by address handles that.
func (e *Engine) routeBudgets(routes []model.Route, pool model.Pool) (best0, best1, worst0, worst1 *big.Int, err error) {
	best0, best1 = new(big.Int), new(big.Int)
	worst0, worst1 = new(big.Int), new(big.Int)
	for _, route := range routes {
		bestSplit, err := feesplit.Apply(route.OutputAmount, e.cfg.FeePolicy)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		worstSplit, err := feesplit.Apply(route.MinOutputAmount, e.cfg.FeePolicy)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		switch route.OutputToken {
		case pool.Token0:
			best0.Add(best0, bestSplit.NetAvailable)
			worst0.Add(worst0, worstSplit.NetAvailable)
		case pool.Token1:
			best1.Add(best1, bestSplit.NetAvailable)
			worst1.Add(worst1, worstSplit.NetAvailable)
		default:
			return nil, nil, nil, nil, ngerr.Newf(ngerr.KindValidation, "route output token %s is not in the destination pool", route.OutputToken)
		}
	}
	return best0, best1, worst0, worst1, nil
}

func (e *Engine) encodeMessages(req SettleRequest, pool model.Pool, position model.Position) ([]byte, []byte, error) {
	mintData, err := codec.EncodeMintParams(e.mintParams(req, position))
	if err != nil {
		return nil, nil, err
	}
	settlementData, err := codec.EncodeSettlementParams(codec.SettlementParams{
		Recipient:          req.Recipient,
		SenderShareBps:     e.cfg.FeePolicy.SenderShareBps,
		SenderFeeRecipient: req.SenderFeeRecipient,
		MintParams:         mintData,
	})
	if err != nil {
		return nil, nil, err
	}

	tokenRoutes := make([]codec.TokenRoute, len(req.Routes))
	for i, route := range req.Routes {
		routeData, err := codec.EncodeBridgeRoute(codec.BridgeRoute{
			OutputToken:        route.OutputToken,
			OutputAmount:       route.OutputAmount,
			QuoteTimestamp:     route.QuoteTimestamp,
			FillDeadline:       route.FillDeadline,
			DestinationSettler: route.DestinationSettler,
		})
		if err != nil {
			return nil, nil, err
		}
		tokenRoutes[i] = codec.TokenRoute{
			InputToken:   route.InputToken,
			MinAmountOut: route.MinOutputAmount,
			Route:        routeData,
		}
	}

	settler := req.Routes[0].DestinationSettler
	if configured, ok := e.cfg.Registry.Settler(req.DestinationChainID); ok {
		settler = configured
	}

	return codec.EncodeMigratorParams(req.MigrationID, codec.MigratorParams{
		ChainID:          uint32(req.DestinationChainID),
		Settler:          settler,
		TokenRoutes:      tokenRoutes,
		SettlementParams: settlementData,
	})
}

func (e *Engine) mintParams(req SettleRequest, position model.Position) codec.MintParams {
	deadline := big.NewInt(e.now().Add(e.cfg.MintDeadline).Unix())
	initPrice := req.InitSqrtPriceX96

	switch req.PoolKey.Variant {
	case model.VariantV4:
		return codec.V4MintParams{
			Currency0:    req.PoolKey.Token0,
			Currency1:    req.PoolKey.Token1,
			Fee:          req.PoolKey.Fee,
			TickSpacing:  req.PoolKey.TickSpacing,
			Hooks:        req.PoolKey.Hooks,
			TickLower:    position.TickLower,
			TickUpper:    position.TickUpper,
			SqrtPriceX96: initPrice,
			Amount0Min:   position.Amount0Min,
			Amount1Min:   position.Amount1Min,
			Recipient:    req.Recipient,
			Deadline:     deadline,
		}
	case model.VariantAerodrome:
		return codec.AerodromeMintParams{
			Token0:       req.PoolKey.Token0,
			Token1:       req.PoolKey.Token1,
			TickSpacing:  req.PoolKey.TickSpacing,
			TickLower:    position.TickLower,
			TickUpper:    position.TickUpper,
			SqrtPriceX96: initPrice,
			Amount0Min:   position.Amount0Min,
			Amount1Min:   position.Amount1Min,
			Recipient:    req.Recipient,
			Deadline:     deadline,
		}
	default:
		return codec.V3MintParams{
			Token0:       req.PoolKey.Token0,
			Token1:       req.PoolKey.Token1,
			Fee:          req.PoolKey.Fee,
			TickLower:    position.TickLower,
			TickUpper:    position.TickUpper,
			SqrtPriceX96: initPrice,
			Amount0Min:   position.Amount0Min,
			Amount1Min:   position.Amount1Min,
			Recipient:    req.Recipient,
			Deadline:     deadline,
		}
	}
}
