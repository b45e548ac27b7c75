package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Store backed by the kv_entries table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store. The schema must already exist.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, unavailable(err))
	}
	return value, true, nil
}

func (s *PostgresStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := upsert(ctx, s.pool, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, unavailable(err))
	}
	return nil
}

func (s *PostgresStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, unavailable(err))
	}
	return nil
}

// Update holds a transaction-scoped advisory lock on the key for the duration
// of fn, so concurrent updaters serialise even before the row exists.
func (s *PostgresStore) Update(key string, fn UpdateFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var fnErr error
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return err
		}

		var current *string
		err := tx.QueryRow(ctx,
			`SELECT value FROM kv_entries WHERE key = $1`,
			key,
		).Scan(&current)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		ok := current != nil
		var value string
		if ok {
			value = *current
		}

		next, write, err := fn(value, ok)
		if err != nil {
			fnErr = err
			return err
		}
		if !write {
			return nil
		}
		return upsert(ctx, tx, key, next)
	})
	if fnErr != nil {
		return fmt.Errorf("update %s: %w", key, fnErr)
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", key, unavailable(err))
	}
	return nil
}

// HealthCheck verifies the database connection is alive.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsert(ctx context.Context, db execer, key, value string) error {
	_, err := db.Exec(ctx,
		`INSERT INTO kv_entries (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key,
		value,
	)
	return err
}
