package model

import "github.com/shopspring/decimal"

// Pair represents a V2 pair reserve record for storage.
//
// Token0Price and Token1Price are instantaneous spot prices derived from the
// reserve ratio at the last sync; ReserveNative is the pool's total depth
// expressed in native-asset units.
type Pair struct {
	ChainID       uint64          `json:"chain_id"`
	Address       string          `json:"address"`
	Token0        string          `json:"token0"`
	Token1        string          `json:"token1"`
	Reserve0      decimal.Decimal `json:"reserve0"`
	Reserve1      decimal.Decimal `json:"reserve1"`
	ReserveNative decimal.Decimal `json:"reserve_native"`
	Token0Price   decimal.Decimal `json:"token0_price"`
	Token1Price   decimal.Decimal `json:"token1_price"`
	SyncedAtBlock uint64          `json:"synced_at_block"`
}
