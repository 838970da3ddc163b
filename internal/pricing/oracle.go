package pricing

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pairScope/internal/model"
	"pairScope/internal/store"
)

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// PairResolver returns the pair address for two tokens, or ok=false when no
// pair exists between them.
type PairResolver func(ctx context.Context, tokenA, tokenB string) (address string, ok bool, err error)

// Oracle derives token prices over the pair graph. It holds no mutable
// state of its own: every method is a pure read over the entity store, so
// repeated calls against an unchanged store return identical results.
type Oracle struct {
	params      Params
	entities    store.EntityStore
	resolvePair PairResolver
	logger      *zap.Logger
	whitelisted map[string]struct{}
}

func NewOracle(params Params, entities store.EntityStore, resolver PairResolver, logger *zap.Logger) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	params = params.normalized()

	whitelisted := make(map[string]struct{}, len(params.Whitelist))
	for _, address := range params.Whitelist {
		whitelisted[address] = struct{}{}
	}

	return &Oracle{
		params:      params,
		entities:    entities,
		resolvePair: resolver,
		logger:      logger,
		whitelisted: whitelisted,
	}
}

// Whitelisted reports whether the token address is a trusted anchor.
func (o *Oracle) Whitelisted(address string) bool {
	_, ok := o.whitelisted[strings.ToLower(address)]
	return ok
}

// NativePriceUSD blends the two designated stablecoin pairs into one USD
// price for the native asset, weighted by each pair's native-side reserve.
// Missing pairs and a zero combined reserve yield zero, not an error.
func (o *Oracle) NativePriceUSD(ctx context.Context) (decimal.Decimal, error) {
	// stable is token0 here, so the native reserve is reserve1
	pair0, ok0, err := o.entities.LoadPair(ctx, o.params.StablePairToken0)
	if err != nil {
		return decimal.Zero, err
	}
	// stable is token1 here, so the native reserve is reserve0
	pair1, ok1, err := o.entities.LoadPair(ctx, o.params.StablePairToken1)
	if err != nil {
		return decimal.Zero, err
	}

	switch {
	case ok0 && ok1:
		totalNative := pair1.Reserve0.Add(pair0.Reserve1)
		if totalNative.IsZero() {
			return decimal.Zero, nil
		}
		weight1 := pair1.Reserve0.Div(totalNative)
		weight0 := pair0.Reserve1.Div(totalNative)
		return pair1.Token1Price.Mul(weight1).Add(pair0.Token0Price.Mul(weight0)), nil
	case ok1:
		return pair1.Token1Price, nil
	case ok0:
		return pair0.Token0Price, nil
	default:
		return decimal.Zero, nil
	}
}

// DeriveNativePrice finds the token's price in native-asset units by
// scanning the whitelist in order and taking the first pair that clears the
// minimum liquidity bar. Single hop only: the counter token's own price is
// read from its stored DerivedNative field, never re-derived here.
//
// A zero result means "no qualifying pair" as much as "worth zero"; callers
// must not distinguish the two.
func (o *Oracle) DeriveNativePrice(ctx context.Context, token model.Token) (decimal.Decimal, error) {
	address := strings.ToLower(token.Address)
	if address == o.params.NativeToken {
		return one, nil
	}

	for _, anchor := range o.params.Whitelist {
		pairAddress, ok, err := o.resolvePair(ctx, address, anchor)
		if err != nil {
			return decimal.Zero, err
		}
		if !ok {
			continue
		}

		pair, found, err := o.entities.LoadPair(ctx, pairAddress)
		if err != nil {
			return decimal.Zero, err
		}
		if !found {
			continue
		}
		if !pair.ReserveNative.GreaterThan(o.params.MinLiquidityNative) {
			o.logger.Debug("skip thin pair",
				zap.String("pair", pair.Address),
				zap.String("reserve_native", pair.ReserveNative.String()),
			)
			continue
		}

		switch address {
		case strings.ToLower(pair.Token0):
			counter, found, err := o.entities.LoadToken(ctx, pair.Token1)
			if err != nil {
				return decimal.Zero, err
			}
			if !found {
				continue
			}
			return pair.Token1Price.Mul(counter.DerivedNative), nil
		case strings.ToLower(pair.Token1):
			counter, found, err := o.entities.LoadToken(ctx, pair.Token0)
			if err != nil {
				return decimal.Zero, err
			}
			if !found {
				continue
			}
			return pair.Token0Price.Mul(counter.DerivedNative), nil
		}
	}

	return decimal.Zero, nil
}
