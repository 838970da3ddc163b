package model

import "github.com/shopspring/decimal"

// Bundle is the process-wide singleton holding the native asset's USD price.
// It is refreshed once per ingested block and only ever read by the pricing
// core.
type Bundle struct {
	NativePriceUSD decimal.Decimal `json:"native_price_usd"`
	UpdatedAtBlock uint64          `json:"updated_at_block"`
}
