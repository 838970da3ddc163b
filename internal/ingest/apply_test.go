package ingest

import (
	"context"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"pairScope/internal/dex"
	"pairScope/internal/model"
	"pairScope/internal/pricing"
	"pairScope/internal/store"
)

const (
	nativeAddr   = "0xb31f66aa3c1e785363f0875a1b74e27b85fd66c7"
	busdAddr     = "0xaeb044650278731ef3dc244692ab9f64c78ffaea"
	usdtAddr     = "0xde3a24028580884448a5397872046a019649b084"
	usdtPairAddr = "0x9ee0a4e21bd333a6bb2ab298194320b8daa26516"
	busdPairAddr = "0x1d704f88fbdfff582bc46167e450f6f8dab83e64"

	testTokenAddr = "0x1000000000000000000000000000000000000001"
	testPairAddr  = "0x2000000000000000000000000000000000000002"
)

func dec(value string) decimal.Decimal {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return parsed
}

// raw scales whole token units into an 18-decimal integer amount.
func raw(units int64) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return new(big.Int).Mul(big.NewInt(units), scale)
}

func newTestApplier(t *testing.T) (*Applier, *store.MemoryStore) {
	t.Helper()
	entities := store.NewMemoryStore()
	ctx := context.Background()

	// native token is pre-priced; the busd pair feeds the bundle price
	if err := entities.SaveTokens(ctx, []model.Token{
		{Address: nativeAddr, Symbol: "WAVAX", Decimals: 18, DerivedNative: dec("1")},
	}); err != nil {
		t.Fatalf("seed tokens: %v", err)
	}
	if err := entities.SavePairs(ctx, []model.Pair{
		{
			Address:     busdPairAddr,
			Token0:      nativeAddr,
			Token1:      busdAddr,
			Reserve0:    dec("300"),
			Token1Price: dec("1.02"),
		},
	}); err != nil {
		t.Fatalf("seed pairs: %v", err)
	}

	params := pricing.Params{
		NativeToken:        nativeAddr,
		StablePairToken0:   usdtPairAddr,
		StablePairToken1:   busdPairAddr,
		Whitelist:          []string{nativeAddr, busdAddr, usdtAddr},
		MinLiquidityNative: decimal.NewFromInt(10),
	}

	resolver := func(_ context.Context, tokenA, tokenB string) (string, bool, error) {
		if tokenA == testTokenAddr && tokenB == nativeAddr {
			return testPairAddr, true, nil
		}
		return "", false, nil
	}
	oracle := pricing.NewOracle(params, entities, resolver, nil)

	pairTokens := func(_ context.Context, pair string) (string, string, error) {
		if pair != testPairAddr {
			t.Fatalf("unexpected pair lookup: %s", pair)
		}
		return testTokenAddr, nativeAddr, nil
	}
	tokenMeta := func(_ context.Context, token string) (dex.TokenMeta, error) {
		return dex.TokenMeta{Address: token, Symbol: "TST", Decimals: 18}, nil
	}

	return NewApplier(43114, entities, oracle, pairTokens, tokenMeta, nil), entities
}

func syncEvent(block uint64) dex.PairEvent {
	return dex.PairEvent{
		Name:        dex.EventSync,
		PairAddress: testPairAddr,
		BlockNumber: block,
		TxHash:      "0xaaa",
		LogIndex:    0,
		Reserve0:    raw(1000),
		Reserve1:    raw(500),
	}
}

func TestApplySyncRegistersAndPrices(t *testing.T) {
	applier, entities := newTestApplier(t)
	ctx := context.Background()

	record, err := applier.Apply(ctx, syncEvent(100), 1700000000)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if record != nil {
		t.Fatalf("sync produced a tracked event")
	}

	pair, found, err := entities.LoadPair(ctx, testPairAddr)
	if err != nil || !found {
		t.Fatalf("pair not registered: %v", err)
	}
	if !pair.Reserve0.Equal(dec("1000")) || !pair.Reserve1.Equal(dec("500")) {
		t.Fatalf("reserves mismatch: %s / %s", pair.Reserve0, pair.Reserve1)
	}
	if !pair.Token0Price.Equal(dec("2")) || !pair.Token1Price.Equal(dec("0.5")) {
		t.Fatalf("spot prices mismatch: %s / %s", pair.Token0Price, pair.Token1Price)
	}
	// the first sync prices against a pair with no recorded depth yet, so
	// only the native side contributes
	if !pair.ReserveNative.Equal(dec("500")) {
		t.Fatalf("reserve native = %s, want 500", pair.ReserveNative)
	}

	bundle, err := entities.LoadBundle(ctx)
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	if !bundle.NativePriceUSD.Equal(dec("1.02")) {
		t.Fatalf("bundle price = %s, want 1.02", bundle.NativePriceUSD)
	}

	// second sync sees the recorded depth and derives the token price
	if _, err := applier.Apply(ctx, syncEvent(101), 1700000003); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	token, found, err := entities.LoadToken(ctx, testTokenAddr)
	if err != nil || !found {
		t.Fatalf("token missing: %v", err)
	}
	if !token.DerivedNative.Equal(dec("0.5")) {
		t.Fatalf("derived native = %s, want 0.5", token.DerivedNative)
	}

	pair, _, _ = entities.LoadPair(ctx, testPairAddr)
	if !pair.ReserveNative.Equal(dec("1000")) {
		t.Fatalf("reserve native = %s, want 1000", pair.ReserveNative)
	}
}

func TestApplySwapTracksTrustedSideOnly(t *testing.T) {
	applier, _ := newTestApplier(t)
	ctx := context.Background()

	if _, err := applier.Apply(ctx, syncEvent(100), 1700000000); err != nil {
		t.Fatalf("sync: %v", err)
	}

	record, err := applier.Apply(ctx, dex.PairEvent{
		Name:        dex.EventSwap,
		PairAddress: testPairAddr,
		BlockNumber: 102,
		TxHash:      "0xbbb",
		LogIndex:    3,
		Amount0:     raw(10), // untrusted token, must be ignored
		Amount1:     raw(5),  // native side
	}, 1700000006)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if record == nil {
		t.Fatalf("swap produced no tracked event")
	}

	if record.Kind != model.EventKindSwap {
		t.Fatalf("kind = %s, want swap", record.Kind)
	}
	// 5 native * (1 * 1.02 USD)
	if !record.AmountUSD.Equal(dec("5.1")) {
		t.Fatalf("tracked volume = %s, want 5.1", record.AmountUSD)
	}
	if record.ChainID != 43114 || record.TxHash != "0xbbb" || record.LogIndex != 3 {
		t.Fatalf("event identity mismatch: %+v", record)
	}
}

func TestApplyMintDoublesTrustedSide(t *testing.T) {
	applier, _ := newTestApplier(t)
	ctx := context.Background()

	if _, err := applier.Apply(ctx, syncEvent(100), 1700000000); err != nil {
		t.Fatalf("sync: %v", err)
	}

	record, err := applier.Apply(ctx, dex.PairEvent{
		Name:        dex.EventMint,
		PairAddress: testPairAddr,
		BlockNumber: 103,
		TxHash:      "0xccc",
		LogIndex:    1,
		Amount0:     raw(10),
		Amount1:     raw(5),
	}, 1700000009)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if record == nil {
		t.Fatalf("mint produced no tracked event")
	}

	if record.Kind != model.EventKindMint {
		t.Fatalf("kind = %s, want mint", record.Kind)
	}
	// liquidity policy: the lone trusted side counts twice
	if !record.AmountUSD.Equal(dec("10.2")) {
		t.Fatalf("tracked liquidity = %s, want 10.2", record.AmountUSD)
	}
}
