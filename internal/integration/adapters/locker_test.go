package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
)

func newMiniRedisLocker(t *testing.T) (adapter.Locker, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLocker(client, "test:lock:"), server
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire fails while held", func(t *testing.T) {
		locker, _ := newMiniRedisLocker(t)

		lock, err := locker.Acquire(ctx, "recurrence:1", time.Minute)
		require.NoError(t, err)

		_, err = locker.Acquire(ctx, "recurrence:1", time.Minute)
		assert.ErrorIs(t, err, domainerror.ErrLockNotAcquired)
		assert.Equal(t, domainerror.KindConflict, domainerror.KindOf(err))

		require.NoError(t, lock.Release(ctx))

		again, err := locker.Acquire(ctx, "recurrence:1", time.Minute)
		require.NoError(t, err)
		require.NoError(t, again.Release(ctx))
	})

	t.Run("expired lease is lost", func(t *testing.T) {
		locker, server := newMiniRedisLocker(t)

		lock, err := locker.Acquire(ctx, "recurrence:2", time.Second)
		require.NoError(t, err)

		server.FastForward(2 * time.Second)

		other, err := locker.Acquire(ctx, "recurrence:2", time.Minute)
		require.NoError(t, err)

		assert.ErrorIs(t, lock.Release(ctx), domainerror.ErrLockLost)
		require.NoError(t, other.Release(ctx))
	})

	t.Run("keys carry the prefix", func(t *testing.T) {
		locker, server := newMiniRedisLocker(t)

		_, err := locker.Acquire(ctx, "installment-group:9", time.Minute)
		require.NoError(t, err)
		assert.True(t, server.Exists("test:lock:installment-group:9"))
	})
}

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	locker := &memoryLocker{leases: map[string]memoryLease{}, now: func() time.Time { return now }}

	lock, err := locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, domainerror.ErrLockNotAcquired)

	now = now.Add(2 * time.Minute)
	taken, err := locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	assert.ErrorIs(t, lock.Release(ctx), domainerror.ErrLockLost)
	assert.NoError(t, taken.Release(ctx))
}

func TestAcquireWithBackoff(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker()

	held, err := locker.Acquire(ctx, "busy", time.Minute)
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = held.Release(ctx)
	}()

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(10*time.Millisecond), 50)
	lock, err := adapter.AcquireWithBackoff(ctx, locker, "busy", time.Minute, policy)
	require.NoError(t, err)
	require.NoError(t, lock.Release(ctx))

	t.Run("gives up after the retry budget", func(t *testing.T) {
		_, err := locker.Acquire(ctx, "stuck", time.Minute)
		require.NoError(t, err)

		policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 3)
		_, err = adapter.AcquireWithBackoff(ctx, locker, "stuck", time.Minute, policy)
		assert.ErrorIs(t, err, domainerror.ErrLockNotAcquired)
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := adapter.AcquireWithBackoff(cancelled, locker, "other", time.Minute, backoff.NewConstantBackOff(time.Millisecond))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
