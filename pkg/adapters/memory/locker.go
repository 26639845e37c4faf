package memory

import (
	"context"
	"sync"
	"time"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
)

// Locker implements ports.Locker in memory.
// Safe for concurrent use. It only coordinates goroutines of one process;
// use the Redis locker to coordinate replicas.
type Locker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

// NewLocker creates a new in-memory locker.
func NewLocker() *Locker {
	return &Locker{
		held: make(map[string]chan struct{}),
	}
}

// Lock blocks until key is free or ctx is done.
// A positive ttl releases the lock automatically if the holder never does.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	for {
		l.mu.Lock()
		ch, busy := l.held[key]
		if !busy {
			ch = make(chan struct{})
			l.held[key] = ch
			l.mu.Unlock()
			return l.releaser(key, ch, ttl), nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ch:
			// Holder released, race for it again
		}
	}
}

func (l *Locker) releaser(key string, ch chan struct{}, ttl time.Duration) ports.UnlockFunc {
	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.held[key] == ch {
				delete(l.held, key)
			}
			close(ch)
		})
	}

	var timer *time.Timer
	if ttl > 0 {
		timer = time.AfterFunc(ttl, release)
	}

	return func(ctx context.Context) error {
		if timer != nil {
			timer.Stop()
		}
		release()
		return nil
	}
}

// Held reports whether key is currently locked.
func (l *Locker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}
