package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStoreFromClient(client), mr
}

func TestRedisStoreSetGet(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "greeting", []byte("hello"), time.Minute))

	value, found, err := store.Get(ctx, "greeting")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("hello"), value)

	_, found, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "ephemeral", []byte("x"), 10*time.Second))

	mr.FastForward(11 * time.Second)

	_, found, err := store.Get(ctx, "ephemeral")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRedisStoreIncrementWithTTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	count, ttl, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.Greater(t, ttl, time.Duration(0))

	count, _, err = store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	mr.FastForward(2 * time.Minute)

	count, _, err = store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, store.Delete(ctx, "a", "b"))

	_, found, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRedisStoreKeysArePrefixed(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "greeting", []byte("hello"), time.Minute))
	require.True(t, mr.Exists("hirewire:greeting"))
}
