package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"pairScope/internal/chain"
	"pairScope/internal/dex"
	"pairScope/internal/model"
	"pairScope/internal/store"
)

// RunConfig holds runtime settings for the ingest loop.
type RunConfig struct {
	ChainID           uint64
	FromBlock         uint64
	ToBlock           uint64
	PairAddresses     []common.Address
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner streams pair logs from the chain, applies them to the entity
// store and records tracked value events.
type Runner struct {
	cfg     RunConfig
	chain   *chain.Client
	decoder *dex.PairDecoder
	applier *Applier
	sink    store.TrackedEventSink
	logger  *zap.Logger
	seen    map[string]struct{}
	cursor  *CursorFile
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, chainClient *chain.Client, decoder *dex.PairDecoder, applier *Applier, sink store.TrackedEventSink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		chain:   chainClient,
		decoder: decoder,
		applier: applier,
		sink:    sink,
		logger:  logger,
		seen:    make(map[string]struct{}),
		cursor:  NewCursorFile(cfg.CheckpointPath, cfg.CheckpointEnabled, cfg.ChainID),
	}
}

// Run executes the ingest loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.decoder == nil {
		return fmt.Errorf("decoder is nil")
	}
	if r.applier == nil {
		return fmt.Errorf("applier is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.cursor != nil {
		cur, ok, err := r.cursor.Load()
		if err != nil {
			return err
		}
		if ok && cur.LastBlock >= from {
			from = cur.LastBlock + 1
			r.logger.Info("resume from cursor", zap.Uint64("last_block", cur.LastBlock), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	topics := r.decoder.Topics()

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch pair logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		logs, err := r.filterLogsWithRetry(ctx, blockRange.From, blockRange.To, topics)
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		tracked := make([]model.TrackedEvent, 0, len(logs))
		var applied, skipped int
		for _, log := range logs {
			if r.isDuplicate(log) || !r.decoder.CanDecode(log) {
				skipped++
				continue
			}

			event, err := r.decoder.Decode(log)
			if err != nil {
				skipped++
				r.logger.Warn("decode pair log", zap.Error(err), zap.String("pair", log.Address.Hex()))
				continue
			}

			ts, err := r.blockTimestampWithRetry(ctx, log.BlockNumber)
			if err != nil {
				return fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
			}

			record, err := r.applier.Apply(ctx, event, ts)
			if err != nil {
				return fmt.Errorf("apply %s at block %d: %w", event.Name, event.BlockNumber, err)
			}
			applied++
			if record != nil {
				tracked = append(tracked, *record)
			}
		}

		if r.sink != nil && len(tracked) > 0 {
			if err := r.sink.AppendTrackedEvents(ctx, tracked); err != nil {
				return fmt.Errorf("store tracked events: %w", err)
			}
		}

		if r.cursor != nil {
			if err := r.cursor.Save(blockRange.To); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete",
			zap.Int("applied", applied),
			zap.Int("skipped", skipped),
			zap.Int("tracked", len(tracked)),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
		)
	}

	return nil
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64, topics []common.Hash) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogs(ctx, fromBlock, toBlock, r.cfg.PairAddresses, topics)
		if err != nil {
			r.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (r *Runner) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		ts, err = r.chain.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			r.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
		}
		return err
	})
	return ts, err
}

func (r *Runner) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
