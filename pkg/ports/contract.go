package ports

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLockerContract runs a suite of tests to verify that a Locker implementation
// adheres to the defined interface contract.
func RunLockerContract(t *testing.T, locker Locker) {
	ctx := context.Background()
	key := "contract-lock-" + time.Now().Format("20060102150405.000")

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, unlock)
		require.NoError(t, unlock(ctx))

		// Reacquire after release
		unlock, err = locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

	t.Run("Contention Honors Context", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		defer func() { _ = unlock(ctx) }()

		waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, key, 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Independent Keys", func(t *testing.T) {
		unlockA, err := locker.Lock(ctx, key+"-a", 5*time.Second)
		require.NoError(t, err)
		defer func() { _ = unlockA(ctx) }()

		waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		unlockB, err := locker.Lock(waitCtx, key+"-b", 5*time.Second)
		require.NoError(t, err, "a different key must not be blocked")
		require.NoError(t, unlockB(ctx))
	})

	t.Run("Mutual Exclusion", func(t *testing.T) {
		var inside, maxInside int32
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				lockCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				unlock, err := locker.Lock(lockCtx, key+"-mx", 5*time.Second)
				if !assert.NoError(t, err) {
					return
				}
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				assert.NoError(t, unlock(ctx))
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxInside)
	})
}
