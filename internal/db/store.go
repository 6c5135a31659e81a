package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Guizzs26/go-field-sync/internal/config"
)

// ErrNotFound is returned by Store.Read when nothing was ever written under the key
var ErrNotFound = errors.New("key not found")

// Store is a namespaced blob store that survives process restarts.
// Write must be atomic with respect to process termination: either the new
// value lands fully or the previous one is kept
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the store backend selected in the configuration
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverFile:
		return NewFileStore(cfg.StorePath, logger)
	case config.DriverSQLite:
		return NewSQLiteStore(cfg.StorePath, logger)
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
