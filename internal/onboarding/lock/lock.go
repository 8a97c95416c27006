// Package lock provides short-lived per-key locks that keep two redemptions
// of the same setup token from running at once.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"instructorhub/pkg/platform/sentinel"
)

// Unlock releases a held lock. Releasing an expired or stolen lock is a no-op.
type Unlock func(ctx context.Context) error

// InMemoryLocker is a process-local Locker for single-node deployments and tests.
type InMemoryLocker struct {
	mu    sync.Mutex
	held  map[string]entry
	clock func() time.Time
}

type entry struct {
	owner     string
	expiresAt time.Time
}

func NewInMemory() *InMemoryLocker {
	return &InMemoryLocker{held: make(map[string]entry), clock: time.Now}
}

// WithClock overrides the time source; used by tests to expire leases.
func (l *InMemoryLocker) WithClock(clock func() time.Time) *InMemoryLocker {
	l.clock = clock
	return l
}

// TryLock acquires key for ttl or fails fast with sentinel.ErrLocked.
func (l *InMemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	if e, ok := l.held[key]; ok && now.Before(e.expiresAt) {
		return nil, fmt.Errorf("lock %s held: %w", key, sentinel.ErrLocked)
	}
	owner := uuid.NewString()
	l.held[key] = entry{owner: owner, expiresAt: now.Add(ttl)}
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e, ok := l.held[key]; ok && e.owner == owner {
			delete(l.held, key)
		}
		return nil
	}, nil
}
