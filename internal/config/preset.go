package config

import (
	"fmt"

	"github.com/shopspring/decimal"

	"pairScope/internal/pricing"
)

// ChainPreset bundles the per-deployment constants for one target chain:
// the factory to resolve pairs through and the pricing parameter set.
type ChainPreset struct {
	Name    string
	Factory string
	Params  pricing.Params
}

// avalanche: WAVAX as native asset, the USDT/WAVAX and BUSD/WAVAX pairs as
// the stablecoin anchors, whitelist ordered by trust.
var builtinPresets = map[string]ChainPreset{
	"avalanche": {
		Name:    "avalanche",
		Factory: "0x9Ad6C38BE94206cA50bb0d90783181662f0Cfa10",
		Params: pricing.Params{
			NativeToken:      "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7",
			StablePairToken0: "0x9ee0a4e21bd333a6bb2ab298194320b8daa26516", // usdt is token0
			StablePairToken1: "0x1d704f88fbdfff582bc46167e450f6f8dab83e64", // busd is token1
			Whitelist: []string{
				"0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7", // WAVAX
				"0xaEb044650278731Ef3DC244692AB9F64C78FfaEA", // BUSD
				"0xde3A24028580884448a5397872046a019649b084", // USDT
				"0x9b71805C8D82E0DA861cA3C2b6c11A331Bd6A318", // WETH
			},
			MinLiquidityNative: decimal.NewFromInt(10),
		},
	},
}

// BuiltinPreset returns a named preset.
func BuiltinPreset(name string) (ChainPreset, bool) {
	preset, ok := builtinPresets[name]
	return preset, ok
}

// ResolvePreset builds the effective chain preset: the named builtin (when
// Chain is set) overridden field by field from the config.
func ResolvePreset(cfg Config) (ChainPreset, error) {
	var preset ChainPreset
	if cfg.Chain != "" {
		builtin, ok := BuiltinPreset(cfg.Chain)
		if !ok {
			return ChainPreset{}, fmt.Errorf("unknown chain preset: %s", cfg.Chain)
		}
		preset = builtin
	}

	if cfg.Factory != "" {
		preset.Factory = cfg.Factory
	}
	if cfg.NativeToken != "" {
		preset.Params.NativeToken = cfg.NativeToken
	}
	if cfg.StablePairToken0 != "" {
		preset.Params.StablePairToken0 = cfg.StablePairToken0
	}
	if cfg.StablePairToken1 != "" {
		preset.Params.StablePairToken1 = cfg.StablePairToken1
	}
	if len(cfg.Whitelist) > 0 {
		preset.Params.Whitelist = cfg.Whitelist
	}
	if cfg.MinLiquidity != "" {
		threshold, err := decimal.NewFromString(cfg.MinLiquidity)
		if err != nil {
			return ChainPreset{}, fmt.Errorf("parse min-liquidity: %w", err)
		}
		preset.Params.MinLiquidityNative = threshold
	}

	if preset.Factory == "" {
		return ChainPreset{}, fmt.Errorf("factory address is required")
	}
	if err := preset.Params.Validate(); err != nil {
		return ChainPreset{}, fmt.Errorf("chain params: %w", err)
	}

	return preset, nil
}
