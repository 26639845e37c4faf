package ports

import (
	"context"
	"fmt"
	"time"
)

// UnlockFunc is a function that releases a lock.
type UnlockFunc func(ctx context.Context) error

// Locker defines the interface for per-key mutual exclusion.
// The block store and revision service use it to keep concurrent writers of
// the same content item from interleaving their delete-and-recreate steps.
type Locker interface {
	// Lock attempts to acquire a lock for the given key (e.g., "blocks:<contentID>").
	// It blocks until the lock is acquired or the context is canceled.
	// The TTL bounds how long a crashed holder can keep the key (implementation specific).
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// DefaultLockTTL bounds multi-step content mutations.
const DefaultLockTTL = 30 * time.Second

// WithLock runs fn while holding key. A nil locker runs fn unguarded.
func WithLock(ctx context.Context, locker Locker, key string, ttl time.Duration, fn func() error) (err error) {
	if locker == nil {
		return fn()
	}
	unlock, err := locker.Lock(ctx, key, ttl)
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer func() {
		// A failed release is reported only when fn itself succeeded
		if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil && err == nil {
			err = fmt.Errorf("unlock %s: %w", key, uerr)
		}
	}()
	return fn()
}
