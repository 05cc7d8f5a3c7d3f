package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppingos/sospay/internal/domain/shared"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	mr, client := setupTestRedis(t)
	locker := NewRedisLocker(client, "sos:lock:order:", 30*time.Second, 100*time.Millisecond, logger.NewNop())
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "99")
	require.NoError(t, err)
	assert.True(t, mr.Exists("sos:lock:order:99"))

	_, err = locker.Acquire(ctx, "99")
	assert.ErrorIs(t, err, shared.ErrLockNotAcquired)

	other, err := locker.Acquire(ctx, "100")
	require.NoError(t, err)
	other()

	release()
	release()
	assert.False(t, mr.Exists("sos:lock:order:99"))

	again, err := locker.Acquire(ctx, "99")
	require.NoError(t, err)
	again()
}

func TestRedisLocker_ReleaseKeepsForeignToken(t *testing.T) {
	mr, client := setupTestRedis(t)
	locker := NewRedisLocker(client, "sos:lock:order:", time.Second, 50*time.Millisecond, logger.NewNop())

	release, err := locker.Acquire(context.Background(), "99")
	require.NoError(t, err)

	// Simulate expiry followed by another holder taking the lock.
	require.NoError(t, mr.Set("sos:lock:order:99", "someone-else"))

	release()
	got, err := mr.Get("sos:lock:order:99")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestKeyedMutex(t *testing.T) {
	m := NewKeyedMutex(200 * time.Millisecond)
	ctx := context.Background()

	release, err := m.Acquire(ctx, "99")
	require.NoError(t, err)

	_, err = m.Acquire(ctx, "99")
	assert.ErrorIs(t, err, shared.ErrLockNotAcquired)

	acquired := make(chan struct{})
	go func() {
		r, err := m.Acquire(ctx, "99")
		if err == nil {
			r()
			close(acquired)
		}
	}()

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the lock")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.entries)
}

func TestKeyedMutex_ContextCancelled(t *testing.T) {
	m := NewKeyedMutex(time.Second)
	release, err := m.Acquire(context.Background(), "99")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Acquire(ctx, "99")
	assert.ErrorIs(t, err, context.Canceled)
}
