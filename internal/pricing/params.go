package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Params is the per-deployment constant set for one target chain. The same
// pricing logic is redeployed per chain with a different Params value, so
// nothing in this package hard-codes addresses.
type Params struct {
	// NativeToken is the wrapped native asset address, the unit of account
	// for derived prices.
	NativeToken string
	// StablePairToken0 is the stable/native pair whose stablecoin sits on
	// the token0 side (native reserve is reserve1).
	StablePairToken0 string
	// StablePairToken1 is the stable/native pair whose stablecoin sits on
	// the token1 side (native reserve is reserve0).
	StablePairToken1 string
	// Whitelist is the ordered set of trusted anchor tokens. Position is
	// search priority: the first entry with a qualifying pair wins, so the
	// operator must order entries from most to least authoritative.
	Whitelist []string
	// MinLiquidityNative rejects a candidate pair unless its native-side
	// depth strictly exceeds this value.
	MinLiquidityNative decimal.Decimal
}

// Validate checks that the constant set is complete enough to price with.
func (p Params) Validate() error {
	if p.NativeToken == "" {
		return fmt.Errorf("native token address is required")
	}
	if p.StablePairToken0 == "" || p.StablePairToken1 == "" {
		return fmt.Errorf("both stable pair addresses are required")
	}
	if len(p.Whitelist) == 0 {
		return fmt.Errorf("whitelist must not be empty")
	}
	if p.MinLiquidityNative.IsNegative() {
		return fmt.Errorf("minimum liquidity must not be negative")
	}
	return nil
}

func (p Params) normalized() Params {
	out := p
	out.NativeToken = strings.ToLower(p.NativeToken)
	out.StablePairToken0 = strings.ToLower(p.StablePairToken0)
	out.StablePairToken1 = strings.ToLower(p.StablePairToken1)
	out.Whitelist = make([]string, len(p.Whitelist))
	for i, address := range p.Whitelist {
		out.Whitelist[i] = strings.ToLower(address)
	}
	return out
}
