package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/adapters/memory"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_Contract(t *testing.T) {
	ports.RunLockerContract(t, memory.NewLocker())
}

func TestMemoryLocker_TTLExpiry(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	_, err := locker.Lock(ctx, "blocks:c1", 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, locker.Held("blocks:c1"))

	// Never unlocked; the ttl frees it
	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlock, err := locker.Lock(waitCtx, "blocks:c1", 0)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
	assert.False(t, locker.Held("blocks:c1"))
}

func TestMemoryLocker_DoubleUnlockIsSafe(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", 0)
	require.NoError(t, err)
	assert.NoError(t, unlock(ctx))
	assert.NoError(t, unlock(ctx))

	// A second holder must not be released by the first holder's stale unlock
	unlock2, err := locker.Lock(ctx, "k", 0)
	require.NoError(t, err)
	assert.NoError(t, unlock(ctx))
	assert.True(t, locker.Held("k"))
	assert.NoError(t, unlock2(ctx))
}
