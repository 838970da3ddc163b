package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "oracle",
		Short:        "DEX pair price oracle and tracked value indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest pair events and refresh prices",
		RunE:  runIngest,
	}

	addChainFlags(runCmd)
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	runCmd.Flags().StringSlice("pair", nil, "pair addresses to watch (comma-separated, empty means all)")
	runCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN (empty runs in-memory with a JSONL sink)")
	runCmd.Flags().String("out", "./data/tracked_events.jsonl", "tracked events JSONL path (in-memory mode)")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")

	root.AddCommand(runCmd)

	priceCmd := &cobra.Command{
		Use:   "price [token-address]",
		Short: "Derive one token's price from stored pair state",
		Args:  cobra.ExactArgs(1),
		RunE:  runPrice,
	}

	addChainFlags(priceCmd)
	priceCmd.Flags().String("pg-dsn", "", "Postgres DSN")

	root.AddCommand(priceCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "chain RPC URL")
	cmd.Flags().String("chain", "avalanche", "chain preset name")
	cmd.Flags().String("factory", "", "V2 factory address (overrides preset)")
	cmd.Flags().String("native-token", "", "wrapped native asset address (overrides preset)")
	cmd.Flags().String("stable-pair-token0", "", "stable/native pair, stable on token0 side (overrides preset)")
	cmd.Flags().String("stable-pair-token1", "", "stable/native pair, stable on token1 side (overrides preset)")
	cmd.Flags().StringSlice("whitelist", nil, "ordered anchor token addresses (overrides preset)")
	cmd.Flags().String("min-liquidity", "", "minimum native-denominated pair depth (overrides preset)")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
