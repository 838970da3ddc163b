package dex

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Canonical V2 pair event names.
const (
	EventSync = "Sync"
	EventSwap = "Swap"
	EventMint = "Mint"
	EventBurn = "Burn"
)

// PairEvent is one decoded V2 pair log. Reserve fields are set for Sync;
// Amount fields for Swap (in+out totals per side), Mint and Burn.
type PairEvent struct {
	Name        string
	PairAddress string
	BlockNumber uint64
	TxHash      string
	LogIndex    uint
	Reserve0    *big.Int
	Reserve1    *big.Int
	Amount0     *big.Int
	Amount1     *big.Int
}

// PairDecoder decodes Uniswap V2 style pair events.
type PairDecoder struct {
	pairABI     abi.ABI
	topicToName map[common.Hash]string
}

// NewPairDecoder builds a V2 pair decoder.
func NewPairDecoder() (*PairDecoder, error) {
	pairABI, err := V2PairABI()
	if err != nil {
		return nil, err
	}

	topicToName := map[common.Hash]string{
		pairABI.Events[EventSync].ID: EventSync,
		pairABI.Events[EventSwap].ID: EventSwap,
		pairABI.Events[EventMint].ID: EventMint,
		pairABI.Events[EventBurn].ID: EventBurn,
	}

	return &PairDecoder{
		pairABI:     pairABI,
		topicToName: topicToName,
	}, nil
}

// Topics returns the topic0 hashes of the supported events, for log filters.
func (d *PairDecoder) Topics() []common.Hash {
	topics := make([]common.Hash, 0, len(d.topicToName))
	for topic := range d.topicToName {
		topics = append(topics, topic)
	}
	return topics
}

// CanDecode checks if the log carries a supported topic0.
func (d *PairDecoder) CanDecode(log types.Log) bool {
	if len(log.Topics) == 0 {
		return false
	}
	_, ok := d.topicToName[log.Topics[0]]
	return ok
}

// Decode converts a raw log into a PairEvent.
func (d *PairDecoder) Decode(log types.Log) (PairEvent, error) {
	if len(log.Topics) == 0 {
		return PairEvent{}, fmt.Errorf("missing topics")
	}
	name, ok := d.topicToName[log.Topics[0]]
	if !ok {
		return PairEvent{}, fmt.Errorf("unsupported topic0: %s", log.Topics[0].Hex())
	}

	event := PairEvent{
		Name:        name,
		PairAddress: strings.ToLower(log.Address.Hex()),
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    log.Index,
	}

	values, err := d.pairABI.Unpack(name, log.Data)
	if err != nil {
		return PairEvent{}, fmt.Errorf("unpack %s: %w", name, err)
	}

	switch name {
	case EventSync:
		if len(values) != 2 {
			return PairEvent{}, fmt.Errorf("sync field count %d", len(values))
		}
		if event.Reserve0, err = asBigInt(values[0]); err != nil {
			return PairEvent{}, fmt.Errorf("reserve0: %w", err)
		}
		if event.Reserve1, err = asBigInt(values[1]); err != nil {
			return PairEvent{}, fmt.Errorf("reserve1: %w", err)
		}
	case EventSwap:
		if len(values) != 4 {
			return PairEvent{}, fmt.Errorf("swap field count %d", len(values))
		}
		amounts := make([]*big.Int, 4)
		for i, value := range values {
			if amounts[i], err = asBigInt(value); err != nil {
				return PairEvent{}, fmt.Errorf("swap amount %d: %w", i, err)
			}
		}
		// a swap moves value in on one side and out on the other; the
		// per-side total is in+out
		event.Amount0 = new(big.Int).Add(amounts[0], amounts[2])
		event.Amount1 = new(big.Int).Add(amounts[1], amounts[3])
	case EventMint, EventBurn:
		if len(values) != 2 {
			return PairEvent{}, fmt.Errorf("%s field count %d", strings.ToLower(name), len(values))
		}
		if event.Amount0, err = asBigInt(values[0]); err != nil {
			return PairEvent{}, fmt.Errorf("amount0: %w", err)
		}
		if event.Amount1, err = asBigInt(values[1]); err != nil {
			return PairEvent{}, fmt.Errorf("amount1: %w", err)
		}
	}

	return event, nil
}
