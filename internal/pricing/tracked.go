package pricing

import (
	"github.com/shopspring/decimal"

	"pairScope/internal/model"
)

// weighting controls how the two sides of an event combine into one USD
// figure depending on whitelist membership.
type weighting struct {
	// bothDivisor divides the two-sided sum when both tokens are trusted.
	bothDivisor decimal.Decimal
	// soloFactor scales the trusted side when only one token is trusted.
	soloFactor decimal.Decimal
}

var (
	// A trade has two independently priced legs; averaging them absorbs
	// transient asymmetry between the legs.
	volumeWeighting = weighting{bothDivisor: two, soloFactor: one}
	// A deposit contributes both sides to pool depth; the untrusted side
	// is approximated as equal in value, hence sum and double.
	liquidityWeighting = weighting{bothDivisor: one, soloFactor: two}
)

// TrackedVolumeUSD returns the whitelist-filtered USD value of one trade.
// Both sides trusted: average of the two legs. One side trusted: that leg
// alone. Neither: zero.
func (o *Oracle) TrackedVolumeUSD(bundle model.Bundle, amount0 decimal.Decimal, token0 model.Token, amount1 decimal.Decimal, token1 model.Token) decimal.Decimal {
	return o.trackedUSD(bundle, amount0, token0, amount1, token1, volumeWeighting)
}

// TrackedLiquidityUSD returns the whitelist-filtered USD value of one
// liquidity event. Both sides trusted: sum of both legs. One side trusted:
// that leg doubled. Neither: zero.
func (o *Oracle) TrackedLiquidityUSD(bundle model.Bundle, amount0 decimal.Decimal, token0 model.Token, amount1 decimal.Decimal, token1 model.Token) decimal.Decimal {
	return o.trackedUSD(bundle, amount0, token0, amount1, token1, liquidityWeighting)
}

func (o *Oracle) trackedUSD(bundle model.Bundle, amount0 decimal.Decimal, token0 model.Token, amount1 decimal.Decimal, token1 model.Token, w weighting) decimal.Decimal {
	price0 := token0.DerivedNative.Mul(bundle.NativePriceUSD)
	price1 := token1.DerivedNative.Mul(bundle.NativePriceUSD)

	trusted0 := o.Whitelisted(token0.Address)
	trusted1 := o.Whitelisted(token1.Address)

	switch {
	case trusted0 && trusted1:
		return amount0.Mul(price0).Add(amount1.Mul(price1)).Div(w.bothDivisor)
	case trusted0:
		return amount0.Mul(price0).Mul(w.soloFactor)
	case trusted1:
		return amount1.Mul(price1).Mul(w.soloFactor)
	default:
		return decimal.Zero
	}
}
