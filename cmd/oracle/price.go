package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"pairScope/internal/chain"
	"pairScope/internal/config"
	"pairScope/internal/dex"
	"pairScope/internal/model"
	"pairScope/internal/pricing"
	"pairScope/internal/store/postgres"
)

func runPrice(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tokenAddress := strings.TrimSpace(args[0])
	if !common.IsHexAddress(tokenAddress) {
		return fmt.Errorf("invalid token address: %s", tokenAddress)
	}

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required (derived prices live in the store)")
	}

	preset, err := config.ResolvePreset(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	pgStore, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pgStore.Close()

	factory, err := dex.NewFactory(chainClient, preset.Factory)
	if err != nil {
		return err
	}
	oracle := pricing.NewOracle(preset.Params, pgStore, factory.PairFor, logger)

	token, found, err := pgStore.LoadToken(ctx, tokenAddress)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if !found {
		token = model.Token{Address: strings.ToLower(tokenAddress)}
	}

	derived, err := oracle.DeriveNativePrice(ctx, token)
	if err != nil {
		return fmt.Errorf("derive price: %w", err)
	}

	bundle, err := pgStore.LoadBundle(ctx)
	if err != nil {
		return fmt.Errorf("load bundle: %w", err)
	}

	fmt.Printf("token:         %s\n", token.Address)
	fmt.Printf("derived price: %s (native units)\n", derived.String())
	fmt.Printf("native price:  %s USD\n", bundle.NativePriceUSD.String())
	fmt.Printf("token price:   %s USD\n", derived.Mul(bundle.NativePriceUSD).String())
	return nil
}
