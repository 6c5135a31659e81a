package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Locker is implemented by stores that several processes may share. Lock blocks
// until the caller holds the store exclusively and returns the release func
type Locker interface {
	Lock(ctx context.Context) (func() error, error)
}

var (
	_ Locker = (*FileStore)(nil)
	_ Locker = (*SQLiteStore)(nil)
	_ Locker = (*PostgresStore)(nil)
)

const lockRetryDelay = 20 * time.Millisecond

// fileLock is an advisory lock file. flock treats a second lock through the same
// handle as already held, so mu serializes the goroutines of this process first
type fileLock struct {
	mu sync.Mutex
	fl *flock.Flock
}

func newFileLock(path string) *fileLock {
	return &fileLock{fl: flock.New(path)}
}

func (l *fileLock) Lock(ctx context.Context) (func() error, error) {
	l.mu.Lock()

	ok, err := l.fl.TryLockContext(ctx, lockRetryDelay)
	if err == nil && !ok {
		err = ctx.Err()
	}
	if err != nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("failed to lock %s: %w", l.fl.Path(), err)
	}

	return func() error {
		defer l.mu.Unlock()
		return l.fl.Unlock()
	}, nil
}
