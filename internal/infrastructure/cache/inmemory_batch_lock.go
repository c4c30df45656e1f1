package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryBatchLock is a process-local batch lock for single-instance
// deployments and tests. Expired entries are reaped lazily on Acquire.
type InMemoryBatchLock struct {
	mu    sync.Mutex
	locks map[string]time.Time // key -> expiry
}

// NewInMemoryBatchLock creates an in-memory batch lock
func NewInMemoryBatchLock() *InMemoryBatchLock {
	return &InMemoryBatchLock{
		locks: make(map[string]time.Time),
	}
}

// Acquire takes the lock unless a live holder exists
func (l *InMemoryBatchLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if expiry, held := l.locks[key]; held && now.Before(expiry) {
		return false, nil
	}
	l.locks[key] = now.Add(ttl)
	return true, nil
}

// Release drops the lock
func (l *InMemoryBatchLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
	return nil
}
