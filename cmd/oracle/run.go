package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairScope/internal/chain"
	"pairScope/internal/config"
	"pairScope/internal/dex"
	"pairScope/internal/ingest"
	"pairScope/internal/pricing"
	"pairScope/internal/store"
	"pairScope/internal/store/postgres"
)

func runIngest(cmd *cobra.Command, _ []string) error {
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

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	preset, err := config.ResolvePreset(cfg)
	if err != nil {
		return err
	}

	pairAddresses, err := ingest.ParseAddresses(cfg.Pairs)
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

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}

	var entities store.EntityStore
	var sink store.TrackedEventSink
	if cfg.PGDSN != "" {
		pgStore, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		entities = pgStore
		sink = pgStore
	} else {
		entities = store.NewMemoryStore()
		sink = store.NewJsonlSink(cfg.Out)
	}

	factory, err := dex.NewFactory(chainClient, preset.Factory)
	if err != nil {
		return err
	}
	oracle := pricing.NewOracle(preset.Params, entities, factory.PairFor, logger)

	decoder, err := dex.NewPairDecoder()
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}

	pairTokens := func(ctx context.Context, pair string) (string, string, error) {
		if !common.IsHexAddress(pair) {
			return "", "", fmt.Errorf("invalid pair address: %s", pair)
		}
		return dex.FetchPairTokens(ctx, chainClient, common.HexToAddress(pair))
	}
	tokenMeta := func(ctx context.Context, token string) (dex.TokenMeta, error) {
		if !common.IsHexAddress(token) {
			return dex.TokenMeta{}, fmt.Errorf("invalid token address: %s", token)
		}
		return dex.FetchTokenMeta(ctx, chainClient, common.HexToAddress(token), logger)
	}

	applier := ingest.NewApplier(chainID.Uint64(), entities, oracle, pairTokens, tokenMeta, logger)

	runner := ingest.NewRunner(ingest.RunConfig{
		ChainID:           chainID.Uint64(),
		FromBlock:         cfg.FromBlock,
		ToBlock:           cfg.ToBlock,
		PairAddresses:     pairAddresses,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, chainClient, decoder, applier, sink, logger)

	logger.Info("oracle start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("chain", preset.Name),
		zap.Uint64("chain_id", chainID.Uint64()),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("pairs", len(pairAddresses)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
	)

	return runner.Run(ctx)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
