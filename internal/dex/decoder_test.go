package dex

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func topicFromAddress(address common.Address) common.Hash {
	return common.BytesToHash(address.Bytes())
}

func buildLog(pair common.Address, topic0 common.Hash, data []byte, extraTopics []common.Hash) types.Log {
	topics := append([]common.Hash{topic0}, extraTopics...)
	return types.Log{
		Address:     pair,
		Topics:      topics,
		Data:        data,
		BlockNumber: 1234,
		TxHash:      common.HexToHash("0xdef456"),
		Index:       7,
	}
}

func TestPairDecoderSync(t *testing.T) {
	pairABI, err := V2PairABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	decoder, err := NewPairDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	pair := common.HexToAddress("0x1111111111111111111111111111111111111111")
	data, err := pairABI.Events[EventSync].Inputs.NonIndexed().Pack(
		big.NewInt(1000),
		big.NewInt(2500),
	)
	if err != nil {
		t.Fatalf("pack sync: %v", err)
	}

	event, err := decoder.Decode(buildLog(pair, pairABI.Events[EventSync].ID, data, nil))
	if err != nil {
		t.Fatalf("decode sync: %v", err)
	}

	if event.Name != EventSync {
		t.Fatalf("event name = %s, want Sync", event.Name)
	}
	if event.Reserve0.Cmp(big.NewInt(1000)) != 0 || event.Reserve1.Cmp(big.NewInt(2500)) != 0 {
		t.Fatalf("reserves mismatch: %s / %s", event.Reserve0, event.Reserve1)
	}
	if event.BlockNumber != 1234 || event.LogIndex != 7 {
		t.Fatalf("log position mismatch: %+v", event)
	}
}

func TestPairDecoderSwapTotalsPerSide(t *testing.T) {
	pairABI, err := V2PairABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	decoder, err := NewPairDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	pair := common.HexToAddress("0x2222222222222222222222222222222222222222")
	sender := common.HexToAddress("0x3333333333333333333333333333333333333333")
	to := common.HexToAddress("0x4444444444444444444444444444444444444444")

	data, err := pairABI.Events[EventSwap].Inputs.NonIndexed().Pack(
		big.NewInt(100), // amount0In
		big.NewInt(0),   // amount1In
		big.NewInt(0),   // amount0Out
		big.NewInt(250), // amount1Out
	)
	if err != nil {
		t.Fatalf("pack swap: %v", err)
	}

	event, err := decoder.Decode(buildLog(pair, pairABI.Events[EventSwap].ID, data, []common.Hash{
		topicFromAddress(sender),
		topicFromAddress(to),
	}))
	if err != nil {
		t.Fatalf("decode swap: %v", err)
	}

	if event.Amount0.Cmp(big.NewInt(100)) != 0 || event.Amount1.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("side totals mismatch: %s / %s", event.Amount0, event.Amount1)
	}
}

func TestPairDecoderMintAndBurn(t *testing.T) {
	pairABI, err := V2PairABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	decoder, err := NewPairDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	pair := common.HexToAddress("0x5555555555555555555555555555555555555555")
	sender := common.HexToAddress("0x6666666666666666666666666666666666666666")

	data, err := pairABI.Events[EventMint].Inputs.NonIndexed().Pack(
		big.NewInt(11),
		big.NewInt(22),
	)
	if err != nil {
		t.Fatalf("pack mint: %v", err)
	}

	event, err := decoder.Decode(buildLog(pair, pairABI.Events[EventMint].ID, data, []common.Hash{
		topicFromAddress(sender),
	}))
	if err != nil {
		t.Fatalf("decode mint: %v", err)
	}
	if event.Name != EventMint || event.Amount0.Cmp(big.NewInt(11)) != 0 || event.Amount1.Cmp(big.NewInt(22)) != 0 {
		t.Fatalf("mint mismatch: %+v", event)
	}

	burnData, err := pairABI.Events[EventBurn].Inputs.NonIndexed().Pack(
		big.NewInt(33),
		big.NewInt(44),
	)
	if err != nil {
		t.Fatalf("pack burn: %v", err)
	}

	event, err = decoder.Decode(buildLog(pair, pairABI.Events[EventBurn].ID, burnData, []common.Hash{
		topicFromAddress(sender),
		topicFromAddress(sender),
	}))
	if err != nil {
		t.Fatalf("decode burn: %v", err)
	}
	if event.Name != EventBurn || event.Amount0.Cmp(big.NewInt(33)) != 0 || event.Amount1.Cmp(big.NewInt(44)) != 0 {
		t.Fatalf("burn mismatch: %+v", event)
	}
}

func TestPairDecoderRejectsUnknownTopic(t *testing.T) {
	decoder, err := NewPairDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	log := buildLog(
		common.HexToAddress("0x7777777777777777777777777777777777777777"),
		common.HexToHash("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
		nil, nil,
	)
	if decoder.CanDecode(log) {
		t.Fatalf("unknown topic reported decodable")
	}
	if _, err := decoder.Decode(log); err == nil {
		t.Fatalf("expected error for unknown topic")
	}
}
