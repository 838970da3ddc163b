package ingest

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pairScope/internal/dex"
	"pairScope/internal/model"
	"pairScope/internal/pricing"
	"pairScope/internal/store"
)

// PairTokensFunc loads a pair's token0/token1 addresses.
type PairTokensFunc func(ctx context.Context, pair string) (token0, token1 string, err error)

// TokenMetaFunc loads ERC20 metadata for a token address.
type TokenMetaFunc func(ctx context.Context, token string) (dex.TokenMeta, error)

// Applier folds decoded pair events into the entity store and prices them.
// Sync events refresh reserves, the bundle and derived token prices; Swap,
// Mint and Burn events are valued through the whitelist filter.
type Applier struct {
	chainID    uint64
	entities   store.EntityStore
	oracle     *pricing.Oracle
	pairTokens PairTokensFunc
	tokenMeta  TokenMetaFunc
	logger     *zap.Logger
}

func NewApplier(chainID uint64, entities store.EntityStore, oracle *pricing.Oracle, pairTokens PairTokensFunc, tokenMeta TokenMetaFunc, logger *zap.Logger) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{
		chainID:    chainID,
		entities:   entities,
		oracle:     oracle,
		pairTokens: pairTokens,
		tokenMeta:  tokenMeta,
		logger:     logger,
	}
}

// Apply processes one decoded pair event. Swap, Mint and Burn events return
// a tracked event carrying the whitelist-filtered USD value; Sync events
// return nil.
func (a *Applier) Apply(ctx context.Context, event dex.PairEvent, timestamp uint64) (*model.TrackedEvent, error) {
	pair, found, err := a.entities.LoadPair(ctx, event.PairAddress)
	if err != nil {
		return nil, fmt.Errorf("load pair %s: %w", event.PairAddress, err)
	}
	if !found {
		pair, err = a.registerPair(ctx, event)
		if err != nil {
			return nil, err
		}
	}

	token0, err := a.ensureToken(ctx, pair.Token0)
	if err != nil {
		return nil, err
	}
	token1, err := a.ensureToken(ctx, pair.Token1)
	if err != nil {
		return nil, err
	}

	switch event.Name {
	case dex.EventSync:
		return nil, a.applySync(ctx, pair, token0, token1, event)
	case dex.EventSwap:
		return a.valueEvent(ctx, model.EventKindSwap, token0, token1, event, timestamp)
	case dex.EventMint:
		return a.valueEvent(ctx, model.EventKindMint, token0, token1, event, timestamp)
	case dex.EventBurn:
		return a.valueEvent(ctx, model.EventKindBurn, token0, token1, event, timestamp)
	default:
		return nil, fmt.Errorf("unsupported event: %s", event.Name)
	}
}

// applySync mirrors the canonical refresh order: reserves and spot prices
// first, then the bundle, then derived token prices, then the pair's
// native-denominated depth.
func (a *Applier) applySync(ctx context.Context, pair model.Pair, token0, token1 model.Token, event dex.PairEvent) error {
	pair.Reserve0 = amountDecimal(event.Reserve0, token0.Decimals)
	pair.Reserve1 = amountDecimal(event.Reserve1, token1.Decimals)

	if pair.Reserve1.IsZero() {
		pair.Token0Price = decimal.Zero
	} else {
		pair.Token0Price = pair.Reserve0.Div(pair.Reserve1)
	}
	if pair.Reserve0.IsZero() {
		pair.Token1Price = decimal.Zero
	} else {
		pair.Token1Price = pair.Reserve1.Div(pair.Reserve0)
	}
	pair.SyncedAtBlock = event.BlockNumber

	if err := a.entities.SavePairs(ctx, []model.Pair{pair}); err != nil {
		return fmt.Errorf("save pair %s: %w", pair.Address, err)
	}

	nativePrice, err := a.oracle.NativePriceUSD(ctx)
	if err != nil {
		return fmt.Errorf("native price: %w", err)
	}
	bundle, err := a.entities.LoadBundle(ctx)
	if err != nil {
		return fmt.Errorf("load bundle: %w", err)
	}
	bundle.NativePriceUSD = nativePrice
	bundle.UpdatedAtBlock = event.BlockNumber
	if err := a.entities.SaveBundle(ctx, bundle); err != nil {
		return fmt.Errorf("save bundle: %w", err)
	}

	derived0, err := a.oracle.DeriveNativePrice(ctx, token0)
	if err != nil {
		return fmt.Errorf("derive %s: %w", token0.Address, err)
	}
	derived1, err := a.oracle.DeriveNativePrice(ctx, token1)
	if err != nil {
		return fmt.Errorf("derive %s: %w", token1.Address, err)
	}
	token0.DerivedNative = derived0
	token1.DerivedNative = derived1
	if err := a.entities.SaveTokens(ctx, []model.Token{token0, token1}); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}

	pair.ReserveNative = pair.Reserve0.Mul(derived0).Add(pair.Reserve1.Mul(derived1))
	if err := a.entities.SavePairs(ctx, []model.Pair{pair}); err != nil {
		return fmt.Errorf("save pair %s: %w", pair.Address, err)
	}
	return nil
}

func (a *Applier) valueEvent(ctx context.Context, kind string, token0, token1 model.Token, event dex.PairEvent, timestamp uint64) (*model.TrackedEvent, error) {
	bundle, err := a.entities.LoadBundle(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}

	amount0 := amountDecimal(event.Amount0, token0.Decimals)
	amount1 := amountDecimal(event.Amount1, token1.Decimals)

	var amountUSD decimal.Decimal
	if kind == model.EventKindSwap {
		amountUSD = a.oracle.TrackedVolumeUSD(bundle, amount0, token0, amount1, token1)
	} else {
		amountUSD = a.oracle.TrackedLiquidityUSD(bundle, amount0, token0, amount1, token1)
	}

	return &model.TrackedEvent{
		ChainID:     a.chainID,
		PairAddress: event.PairAddress,
		BlockNumber: event.BlockNumber,
		TxHash:      event.TxHash,
		LogIndex:    event.LogIndex,
		Kind:        kind,
		Amount0:     amount0,
		Amount1:     amount1,
		AmountUSD:   amountUSD,
		Timestamp:   timestamp,
		IngestedAt:  time.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}

func (a *Applier) registerPair(ctx context.Context, event dex.PairEvent) (model.Pair, error) {
	token0, token1, err := a.pairTokens(ctx, event.PairAddress)
	if err != nil {
		return model.Pair{}, fmt.Errorf("pair tokens %s: %w", event.PairAddress, err)
	}

	pair := model.Pair{
		ChainID: a.chainID,
		Address: event.PairAddress,
		Token0:  token0,
		Token1:  token1,
	}
	if err := a.entities.SavePairs(ctx, []model.Pair{pair}); err != nil {
		return model.Pair{}, fmt.Errorf("save pair %s: %w", pair.Address, err)
	}

	a.logger.Info("pair registered",
		zap.String("pair", pair.Address),
		zap.String("token0", token0),
		zap.String("token1", token1),
	)
	return pair, nil
}

func (a *Applier) ensureToken(ctx context.Context, address string) (model.Token, error) {
	token, found, err := a.entities.LoadToken(ctx, address)
	if err != nil {
		return model.Token{}, fmt.Errorf("load token %s: %w", address, err)
	}
	if found {
		return token, nil
	}

	token = model.Token{Address: address}
	meta, err := a.tokenMeta(ctx, address)
	if err != nil {
		a.logger.Warn("token metadata fetch failed", zap.String("token", address), zap.Error(err))
	} else {
		token.Symbol = meta.Symbol
		token.Decimals = meta.Decimals
	}

	if err := a.entities.SaveTokens(ctx, []model.Token{token}); err != nil {
		return model.Token{}, fmt.Errorf("save token %s: %w", address, err)
	}
	return token, nil
}

// amountDecimal converts a raw integer amount into token units.
func amountDecimal(value *big.Int, decimals uint8) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(new(big.Int).Abs(value), -int32(decimals))
}
