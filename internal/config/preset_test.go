package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestResolvePresetBuiltin(t *testing.T) {
	preset, err := ResolvePreset(Config{Chain: "avalanche"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if preset.Factory == "" {
		t.Fatalf("factory not set")
	}
	if len(preset.Params.Whitelist) != 4 {
		t.Fatalf("whitelist size = %d, want 4", len(preset.Params.Whitelist))
	}
	if preset.Params.Whitelist[0] != preset.Params.NativeToken {
		t.Fatalf("native token must lead the whitelist")
	}
	if !preset.Params.MinLiquidityNative.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("min liquidity = %s, want 10", preset.Params.MinLiquidityNative)
	}
}

func TestResolvePresetOverrides(t *testing.T) {
	preset, err := ResolvePreset(Config{
		Chain:        "avalanche",
		MinLiquidity: "25.5",
		Whitelist:    []string{"0x1111111111111111111111111111111111111111"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !preset.Params.MinLiquidityNative.Equal(decimal.RequireFromString("25.5")) {
		t.Fatalf("min liquidity override not applied: %s", preset.Params.MinLiquidityNative)
	}
	if len(preset.Params.Whitelist) != 1 {
		t.Fatalf("whitelist override not applied: %v", preset.Params.Whitelist)
	}
}

func TestResolvePresetUnknownChain(t *testing.T) {
	if _, err := ResolvePreset(Config{Chain: "mainnet"}); err == nil {
		t.Fatalf("expected error for unknown chain")
	}
}

func TestResolvePresetBadThreshold(t *testing.T) {
	if _, err := ResolvePreset(Config{Chain: "avalanche", MinLiquidity: "not-a-number"}); err == nil {
		t.Fatalf("expected error for invalid threshold")
	}
}

func TestResolvePresetIncomplete(t *testing.T) {
	if _, err := ResolvePreset(Config{Factory: "0x2222222222222222222222222222222222222222"}); err == nil {
		t.Fatalf("expected error for missing pricing params")
	}
}
