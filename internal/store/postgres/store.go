package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"pairScope/internal/model"
)

// Store provides Postgres persistence for pricing entities.
// Decimal columns are NUMERIC and travel as strings to keep precision.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// LoadPair returns the pair record for an address.
func (s *Store) LoadPair(ctx context.Context, address string) (model.Pair, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT chain_id, pair_address, token0, token1,
		       reserve0::text, reserve1::text, reserve_native::text,
		       token0_price::text, token1_price::text, synced_at_block
		FROM pairs WHERE pair_address = lower($1)
	`, address)

	var pair model.Pair
	var reserve0, reserve1, reserveNative, price0, price1 string
	err := row.Scan(
		&pair.ChainID, &pair.Address, &pair.Token0, &pair.Token1,
		&reserve0, &reserve1, &reserveNative, &price0, &price1,
		&pair.SyncedAtBlock,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Pair{}, false, nil
		}
		return model.Pair{}, false, err
	}

	if err := scanDecimals(map[*decimal.Decimal]string{
		&pair.Reserve0:      reserve0,
		&pair.Reserve1:      reserve1,
		&pair.ReserveNative: reserveNative,
		&pair.Token0Price:   price0,
		&pair.Token1Price:   price1,
	}); err != nil {
		return model.Pair{}, false, fmt.Errorf("pair %s: %w", address, err)
	}
	return pair, true, nil
}

// SavePairs inserts or updates pair records.
func (s *Store) SavePairs(ctx context.Context, pairs []model.Pair) error {
	if len(pairs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pair := range pairs {
		batch.Queue(`
			INSERT INTO pairs (
				chain_id, pair_address, token0, token1,
				reserve0, reserve1, reserve_native, token0_price, token1_price,
				synced_at_block, created_at, updated_at
			) VALUES ($1, lower($2), lower($3), lower($4), $5, $6, $7, $8, $9, $10, now(), now())
			ON CONFLICT (pair_address)
			DO UPDATE SET
				reserve0 = EXCLUDED.reserve0,
				reserve1 = EXCLUDED.reserve1,
				reserve_native = EXCLUDED.reserve_native,
				token0_price = EXCLUDED.token0_price,
				token1_price = EXCLUDED.token1_price,
				synced_at_block = EXCLUDED.synced_at_block,
				updated_at = now()
		`,
			int64(pair.ChainID),
			pair.Address,
			pair.Token0,
			pair.Token1,
			pair.Reserve0.String(),
			pair.Reserve1.String(),
			pair.ReserveNative.String(),
			pair.Token0Price.String(),
			pair.Token1Price.String(),
			int64(pair.SyncedAtBlock),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pairs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadToken returns the token record for an address.
func (s *Store) LoadToken(ctx context.Context, address string) (model.Token, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT token_address, symbol, decimals, derived_native::text
		FROM tokens WHERE token_address = lower($1)
	`, address)

	var token model.Token
	var derived string
	if err := row.Scan(&token.Address, &token.Symbol, &token.Decimals, &derived); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Token{}, false, nil
		}
		return model.Token{}, false, err
	}

	value, err := decimal.NewFromString(derived)
	if err != nil {
		return model.Token{}, false, fmt.Errorf("token %s: %w", address, err)
	}
	token.DerivedNative = value
	return token, true, nil
}

// SaveTokens inserts or updates token records.
func (s *Store) SaveTokens(ctx context.Context, tokens []model.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, token := range tokens {
		batch.Queue(`
			INSERT INTO tokens (token_address, symbol, decimals, derived_native, created_at, updated_at)
			VALUES (lower($1), $2, $3, $4, now(), now())
			ON CONFLICT (token_address)
			DO UPDATE SET
				symbol = EXCLUDED.symbol,
				decimals = EXCLUDED.decimals,
				derived_native = EXCLUDED.derived_native,
				updated_at = now()
		`,
			token.Address,
			token.Symbol,
			token.Decimals,
			token.DerivedNative.String(),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range tokens {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadBundle returns the singleton bundle row, zero-valued when missing.
func (s *Store) LoadBundle(ctx context.Context) (model.Bundle, error) {
	row := s.pool.QueryRow(ctx, `SELECT native_price_usd::text, updated_at_block FROM bundle WHERE id = 1`)

	var bundle model.Bundle
	var price string
	if err := row.Scan(&price, &bundle.UpdatedAtBlock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Bundle{NativePriceUSD: decimal.Zero}, nil
		}
		return model.Bundle{}, err
	}

	value, err := decimal.NewFromString(price)
	if err != nil {
		return model.Bundle{}, fmt.Errorf("bundle: %w", err)
	}
	bundle.NativePriceUSD = value
	return bundle, nil
}

// SaveBundle upserts the singleton bundle row.
func (s *Store) SaveBundle(ctx context.Context, bundle model.Bundle) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bundle (id, native_price_usd, updated_at_block, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET native_price_usd = EXCLUDED.native_price_usd,
		    updated_at_block = EXCLUDED.updated_at_block,
		    updated_at = now()
	`, bundle.NativePriceUSD.String(), int64(bundle.UpdatedAtBlock))
	return err
}

// AppendTrackedEvents inserts tracked events, ignoring duplicates.
func (s *Store) AppendTrackedEvents(ctx context.Context, events []model.TrackedEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(`
			INSERT INTO tracked_events (
				chain_id, pair_address, block_number, tx_hash, log_index,
				kind, amount0, amount1, amount_usd, event_ts, ingested_at
			) VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (tx_hash, log_index) DO NOTHING
		`,
			int64(event.ChainID),
			event.PairAddress,
			int64(event.BlockNumber),
			event.TxHash,
			int64(event.LogIndex),
			event.Kind,
			event.Amount0.String(),
			event.Amount1.String(),
			event.AmountUSD.String(),
			int64(event.Timestamp),
			event.IngestedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func scanDecimals(fields map[*decimal.Decimal]string) error {
	for target, raw := range fields {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return err
		}
		*target = value
	}
	return nil
}
