package dex

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"pairScope/internal/chain"
)

// Factory resolves pair addresses through the V2 factory contract.
// The factory returns the zero address when no pair exists for a token
// combination; that sentinel maps to ok=false here.
type Factory struct {
	client  *chain.Client
	address common.Address
}

func NewFactory(client *chain.Client, address string) (*Factory, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid factory address: %s", address)
	}
	return &Factory{client: client, address: common.HexToAddress(address)}, nil
}

// PairFor returns the pair address for two tokens, or ok=false when the
// factory knows no such pair. The signature matches pricing.PairResolver.
func (f *Factory) PairFor(ctx context.Context, tokenA, tokenB string) (string, bool, error) {
	if !common.IsHexAddress(tokenA) || !common.IsHexAddress(tokenB) {
		return "", false, fmt.Errorf("invalid token address: %s / %s", tokenA, tokenB)
	}

	parsed, err := FactoryABI()
	if err != nil {
		return "", false, fmt.Errorf("parse factory abi: %w", err)
	}

	data, err := parsed.Pack("getPair", common.HexToAddress(tokenA), common.HexToAddress(tokenB))
	if err != nil {
		return "", false, fmt.Errorf("pack getPair: %w", err)
	}

	to := f.address
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := f.client.CallContract(ctx, msg, nil)
	if err != nil {
		return "", false, fmt.Errorf("call getPair: %w", err)
	}

	values, err := parsed.Unpack("getPair", resp)
	if err != nil {
		return "", false, fmt.Errorf("unpack getPair: %w", err)
	}
	if len(values) != 1 {
		return "", false, fmt.Errorf("getPair return size %d", len(values))
	}
	pair, err := asAddress(values[0])
	if err != nil {
		return "", false, fmt.Errorf("getPair: %w", err)
	}

	if pair == (common.Address{}) {
		return "", false, nil
	}
	return strings.ToLower(pair.Hex()), true, nil
}
