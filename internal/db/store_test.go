package db

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Read(ctx, "treeSamples"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on first read, got %v", err)
	}

	if err := s.Write(ctx, "treeSamples", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := s.Read(ctx, "treeSamples")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Errorf("unexpected value: %s", got)
	}

	if err := s.Write(ctx, "treeSamples", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, _ = s.Read(ctx, "treeSamples")
	if string(got) != `[]` {
		t.Errorf("overwrite not visible: %s", got)
	}

	if err := s.Write(ctx, "soilSamples", []byte(`[1]`)); err != nil {
		t.Fatalf("Write soilSamples failed: %v", err)
	}

	if err := s.Delete(ctx, "treeSamples"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Read(ctx, "treeSamples"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "treeSamples"); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}

	got, err = s.Read(ctx, "soilSamples")
	if err != nil || string(got) != `[1]` {
		t.Errorf("other namespace disturbed: %s, %v", got, err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "store"), testLogger())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, testLogger())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := s.Write(context.Background(), "climateData", []byte(strings.Repeat("x", i))); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "climateData.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only climateData.json, got %v", names)
	}
}

func TestFileStoreKeepsPreviousValueOnFailedWrite(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, testLogger())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	if err := s.Write(ctx, "soilSamples", []byte(`["old"]`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// A directory squatting on the target path makes the rename fail after the temp file was written
	blocked := filepath.Join(dir, "blocked.json")
	if err := os.MkdirAll(filepath.Join(blocked, "child"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := s.Write(ctx, "blocked", []byte(`["new"]`)); err == nil {
		t.Fatal("expected write onto a directory to fail")
	}

	got, err := s.Read(ctx, "soilSamples")
	if err != nil || string(got) != `["old"]` {
		t.Errorf("previous value lost: %s, %v", got, err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestFileStoreLockExcludesOtherHandles(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileStore(dir, testLogger())
	if err != nil {
		t.Fatalf("NewFileStore A failed: %v", err)
	}
	b, err := NewFileStore(dir, testLogger())
	if err != nil {
		t.Fatalf("NewFileStore B failed: %v", err)
	}

	release, err := a.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock A failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := b.Lock(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected B to wait out its deadline, got %v", err)
	}

	if err := release(); err != nil {
		t.Fatalf("release A failed: %v", err)
	}
	releaseB, err := b.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock B after release failed: %v", err)
	}
	if err := releaseB(); err != nil {
		t.Errorf("release B failed: %v", err)
	}
}

func TestFileStoreRejectsUnsafeKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	for _, key := range []string{"", "../escape", "a/b", "with space"} {
		if err := s.Write(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("expected key %q to be rejected", key)
		}
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "fieldsync.db"), testLogger())
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fieldsync.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path, testLogger())
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := s.Write(ctx, "managementPractices", []byte(`["kept"]`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = NewSQLiteStore(path, testLogger())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	got, err := s.Read(ctx, "managementPractices")
	if err != nil || string(got) != `["kept"]` {
		t.Errorf("value not persisted across reopen: %s, %v", got, err)
	}
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("FIELDSYNC_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("FIELDSYNC_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, url, testLogger())
	if err != nil {
		t.Fatalf("NewPostgresStore failed: %v", err)
	}
	defer s.Close()

	_ = s.Delete(ctx, "treeSamples")
	_ = s.Delete(ctx, "soilSamples")
	exerciseStore(t, s)
}
