package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestTokenStoreLifecycle(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewTokenStore(client)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, store.SaveAccess(ctx, userID, "a1", time.Minute))
	require.NoError(t, store.SaveRefresh(ctx, userID, "r1", time.Hour))

	ok, err := store.AccessExists(ctx, userID, "a1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.RefreshExists(ctx, userID, "r1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = store.AccessExists(ctx, userID, "a1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.DeleteRefresh(ctx, userID, "r1"))
	ok, err = store.RefreshExists(ctx, userID, "r1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenStoreRevokeAllKeepsOtherUsers(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewTokenStore(client)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, store.SaveAccess(ctx, alice, "a1", time.Minute))
	require.NoError(t, store.SaveAccess(ctx, alice, "a2", time.Minute))
	require.NoError(t, store.SaveRefresh(ctx, alice, "r1", time.Hour))
	require.NoError(t, store.SaveAccess(ctx, bob, "b1", time.Minute))

	require.NoError(t, store.RevokeAll(ctx, alice))

	for _, id := range []string{"a1", "a2"} {
		ok, err := store.AccessExists(ctx, alice, id)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	ok, err := store.RefreshExists(ctx, alice, "r1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.AccessExists(ctx, bob, "b1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiterFixedWindow(t *testing.T) {
	mr, client := newTestRedis(t)
	limiter := NewRateLimiter(client, "booking", 2, time.Minute, true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "patient-1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "patient-1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "patient-2")
	require.NoError(t, err)
	assert.True(t, allowed)

	mr.FastForward(time.Minute + time.Second)
	allowed, err = limiter.Allow(ctx, "patient-1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiterFollowsFailMode(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()
	ctx := context.Background()

	allowed, err := NewRateLimiter(client, "booking", 2, time.Minute, true).Allow(ctx, "patient-1")
	assert.Error(t, err)
	assert.True(t, allowed)

	allowed, err = NewRateLimiter(client, "booking", 2, time.Minute, false).Allow(ctx, "patient-1")
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestRateLimiterDisabled(t *testing.T) {
	var limiter *RateLimiter
	allowed, err := limiter.Allow(context.Background(), "anyone")
	require.NoError(t, err)
	assert.True(t, allowed)

	_, client := newTestRedis(t)
	allowed, err = NewRateLimiter(client, "booking", 0, time.Minute, false).Allow(context.Background(), "anyone")
	require.NoError(t, err)
	assert.True(t, allowed)
}
