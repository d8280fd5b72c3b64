package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLock_Exclusive(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLock()

	token, ok, err := l.Lock(ctx, "approve:emp-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	// Same key is held
	_, ok, err = l.Lock(ctx, "approve:emp-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// Other keys are independent
	_, ok, _ = l.Lock(ctx, "approve:emp-2", time.Minute)
	assert.True(t, ok)

	require.NoError(t, l.Unlock(ctx, "approve:emp-1", token))
	_, ok, _ = l.Lock(ctx, "approve:emp-1", time.Minute)
	assert.True(t, ok)
}

func TestLocalLock_Expires(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLock()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	_, ok, _ := l.Lock(ctx, "k", 10*time.Second)
	require.True(t, ok)

	now = now.Add(11 * time.Second)
	_, ok, _ = l.Lock(ctx, "k", 10*time.Second)
	assert.True(t, ok, "expired lock should be re-acquirable")
}

func TestLocalLock_StaleHolderCannotRelease(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLock()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	// GIVEN: A first holder outlives its ttl and a second holder takes the key
	stale, ok, _ := l.Lock(ctx, "k", 10*time.Second)
	require.True(t, ok)
	now = now.Add(11 * time.Second)
	current, ok, _ := l.Lock(ctx, "k", 10*time.Second)
	require.True(t, ok)
	require.NotEqual(t, stale, current)

	// WHEN: The first holder releases late
	require.NoError(t, l.Unlock(ctx, "k", stale))

	// THEN: The second holder still owns the key
	_, ok, _ = l.Lock(ctx, "k", 10*time.Second)
	assert.False(t, ok)

	require.NoError(t, l.Unlock(ctx, "k", current))
	_, ok, _ = l.Lock(ctx, "k", 10*time.Second)
	assert.True(t, ok)
}

func TestRedisLock_KeyPrefix(t *testing.T) {
	assert.Equal(t, "leave-ledger:lock:approve:emp-1", lockKey("approve:emp-1"))
}

func TestRedisLock_UnreachableServerErrors(t *testing.T) {
	// Nothing listens on port 1; commands fail instead of reporting the lock as free
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	l := NewRedisLockFromClient(client)
	defer l.Close()

	token, ok, err := l.Lock(context.Background(), "k", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Empty(t, token)

	assert.Error(t, l.Unlock(context.Background(), "k", "whatever"))
}
