package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Run from a directory without a .env file
	t.Chdir(t.TempDir())

	cfg := Load()

	if cfg.StoreDriver != DriverFile {
		t.Errorf("expected default driver %q, got %q", DriverFile, cfg.StoreDriver)
	}
	if cfg.Transport != TransportHTTP {
		t.Errorf("expected default transport %q, got %q", TransportHTTP, cfg.Transport)
	}
	if cfg.SyncMaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.SyncMaxAttempts)
	}
	if cfg.IngestTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.IngestTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("INGEST_BASE_URL", "https://collector.example.org/api/")
	t.Setenv("SYNC_RETRY_MIN_MS", "50")
	t.Setenv("TRANSPORT", "amqp")

	cfg := Load()

	if cfg.StoreDriver != DriverSQLite {
		t.Errorf("expected sqlite driver, got %q", cfg.StoreDriver)
	}
	if cfg.StorePath != ".fieldsync/fieldsync.db" {
		t.Errorf("expected sqlite default path, got %q", cfg.StorePath)
	}
	if cfg.IngestBaseURL != "https://collector.example.org/api" {
		t.Errorf("trailing slash not trimmed: %q", cfg.IngestBaseURL)
	}
	if cfg.RetryMinDelay != 50*time.Millisecond {
		t.Errorf("expected 50ms, got %v", cfg.RetryMinDelay)
	}
	if cfg.Transport != TransportAMQP {
		t.Errorf("expected amqp transport, got %q", cfg.Transport)
	}
}

func TestLoadClampsAttempts(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := map[string]int{
		"0":    MinSyncAttempts,
		"-3":   MinSyncAttempts,
		"500":  MaxSyncAttempts,
		"4":    4,
		"oops": 3,
	}

	for value, want := range tests {
		t.Setenv("SYNC_MAX_ATTEMPTS", value)
		if got := Load().SyncMaxAttempts; got != want {
			t.Errorf("SYNC_MAX_ATTEMPTS=%s: expected %d, got %d", value, want, got)
		}
	}
}

func TestValidateRejectsUnknownNames(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load()
	cfg.StoreDriver = "bolt"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unknown driver to be rejected")
	}

	cfg = Load()
	cfg.Transport = "grpc"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unknown transport to be rejected")
	}

	cfg = Load()
	cfg.RetryMaxDelay = cfg.RetryMinDelay - time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Error("expected inverted retry delays to be rejected")
	}
}
