package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/adapters/redis"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T) (*miniredis.Miniredis, *redis.Locker) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, redis.NewLocker(client, "cms:", redis.WithPollInterval(20*time.Millisecond))
}

func TestRedisLocker_Contract(t *testing.T) {
	_, locker := newLocker(t)
	ports.RunLockerContract(t, locker)
}

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, locker := newLocker(t)
	ctx := context.Background()

	// 1. Acquire Lock
	unlock, err := locker.Lock(ctx, "blocks:c1", 5*time.Second)
	assert.NoError(t, err)
	assert.NotNil(t, unlock)

	// Verify key set in redis
	assert.True(t, mr.Exists("cms:lock:blocks:c1"), "Lock key should be set in Redis")

	// 2. Release Lock
	err = unlock(ctx)
	assert.NoError(t, err)

	// Verify key removed
	assert.False(t, mr.Exists("cms:lock:blocks:c1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:") // Same prefix -> contention
	ctx := context.Background()
	key := "shared-resource"

	// 1. Client 1 acquires lock
	unlock1, err := locker1.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)

	// 2. Client 2 blocks until its context expires
	ctxTimeout, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = locker2.Lock(ctxTimeout, key, 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.WithinDuration(t, start.Add(500*time.Millisecond), time.Now(), 150*time.Millisecond, "Should block until timeout")

	// 3. Client 1 unlocks
	require.NoError(t, unlock1(ctx))

	// 4. Client 2 tries again (should succeed)
	unlock2, err := locker2.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	defer unlock2(ctx)

	assert.True(t, mr.Exists("test:lock:shared-resource"))
}

func TestRedisLocker_StaleUnlockKeepsNewHolder(t *testing.T) {
	mr, locker := newLocker(t)
	ctx := context.Background()

	unlock1, err := locker.Lock(ctx, "k", time.Second)
	require.NoError(t, err)

	// TTL lapses, a second holder takes over
	mr.FastForward(2 * time.Second)
	unlock2, err := locker.Lock(ctx, "k", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, unlock1(ctx))
	assert.True(t, mr.Exists("cms:lock:k"), "stale holder must not release the new lock")
	require.NoError(t, unlock2(ctx))
	assert.False(t, mr.Exists("cms:lock:k"))
}
