package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore backs the local store with a Postgres table, for field stations
// that run a shared database next to the capture devices
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresStore(ctx context.Context, connString string, logger *slog.Logger) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	p, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres did not answer ping: %w", err)
	}

	s := &PostgresStore{pool: p, logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		p.Close()
		return nil, err
	}

	logger.Debug("Postgres store ready", "host", config.ConnConfig.Host)
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS fieldsync_kv (
			namespace  TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create fieldsync_kv table: %w", err)
	}
	return nil
}

// storeLockKey identifies the session advisory lock every client of fieldsync_kv takes
const storeLockKey int64 = 0x6669656c6473796e

// Lock holds a pooled connection with the advisory lock until release
func (s *PostgresStore) Lock(ctx context.Context) (func() error, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for lock: %w", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, storeLockKey); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to take advisory lock: %w", err)
	}

	return func() error {
		defer conn.Release()
		if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, storeLockKey); err != nil {
			// a session still holding the lock must not go back to the pool
			conn.Conn().Close(context.Background())
			return fmt.Errorf("failed to release advisory lock: %w", err)
		}
		return nil
	}, nil
}

func (s *PostgresStore) Read(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM fieldsync_kv WHERE namespace = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Write(ctx context.Context, key string, blob []byte) error {
	query := `
		INSERT INTO fieldsync_kv (namespace, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (namespace)
		DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.pool.Exec(ctx, query, key, blob); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM fieldsync_kv WHERE namespace = $1`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.logger.Debug("Closing Postgres pool")
	s.pool.Close()
	return nil
}
