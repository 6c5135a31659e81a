package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// KVEntry is one namespaced blob in the SQLite store
type KVEntry struct {
	Key       string `gorm:"column:namespace;primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

func (KVEntry) TableName() string { return "kv_entries" }

// SQLiteStore keeps blobs in an embedded, CGO-free SQLite database.
// Each write is a single upsert statement, so SQLite's journal gives the atomicity
type SQLiteStore struct {
	db     *gorm.DB
	lock   *fileLock
	logger *slog.Logger
}

func NewSQLiteStore(path string, l *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		closeGorm(db)
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := db.Exec("PRAGMA synchronous=FULL").Error; err != nil {
		closeGorm(db)
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		closeGorm(db)
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	l.Debug("SQLite store ready", "path", path)
	return &SQLiteStore{db: db, lock: newFileLock(path + ".lock"), logger: l}, nil
}

// Lock spans a whole read-modify-write cycle, which SQLite's per-statement
// locking does not cover
func (s *SQLiteStore) Lock(ctx context.Context) (func() error, error) {
	return s.lock.Lock(ctx)
}

func (s *SQLiteStore) Read(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).First(&entry, "namespace = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *SQLiteStore) Write(ctx context.Context, key string, blob []byte) error {
	entry := KVEntry{Key: key, Value: blob, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&KVEntry{}, "namespace = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.logger.Debug("Closing SQLite store")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeGorm(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
