package model

import "github.com/shopspring/decimal"

// Event kinds recorded by the ingest loop.
const (
	EventKindSwap = "swap"
	EventKindMint = "mint"
	EventKindBurn = "burn"
)

// TrackedEvent is one trade or liquidity event with its whitelist-filtered
// USD value. AmountUSD is zero when neither side of the event touched a
// whitelisted token.
type TrackedEvent struct {
	ChainID     uint64          `json:"chain_id"`
	PairAddress string          `json:"pair_address"`
	BlockNumber uint64          `json:"block_number"`
	TxHash      string          `json:"tx_hash"`
	LogIndex    uint            `json:"log_index"`
	Kind        string          `json:"kind"`
	Amount0     decimal.Decimal `json:"amount0"`
	Amount1     decimal.Decimal `json:"amount1"`
	AmountUSD   decimal.Decimal `json:"amount_usd"`
	Timestamp   uint64          `json:"timestamp"`
	IngestedAt  string          `json:"ingested_at"`
}
