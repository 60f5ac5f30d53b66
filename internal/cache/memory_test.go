package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newClockedMemoryStore(start time.Time) (*MemoryStore, *time.Time) {
	current := start
	store := NewMemoryStore()
	store.clock = func() time.Time { return current }
	return store, &current
}

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
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

func TestMemoryStoreExpiry(t *testing.T) {
	start := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	store, clock := newClockedMemoryStore(start)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "ephemeral", []byte("x"), 10*time.Second))

	*clock = clock.Add(5 * time.Second)
	_, found, err := store.Get(ctx, "ephemeral")
	require.NoError(t, err)
	require.True(t, found)

	*clock = clock.Add(6 * time.Second)
	_, found, err = store.Get(ctx, "ephemeral")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	start := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	store, clock := newClockedMemoryStore(start)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "forever", []byte("x"), 0))

	*clock = clock.Add(24 * time.Hour)
	_, found, err := store.Get(ctx, "forever")
	require.NoError(t, err)
	require.True(t, found)
}

func TestMemoryStoreIncrementWithTTL(t *testing.T) {
	start := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	store, clock := newClockedMemoryStore(start)
	ctx := context.Background()

	count, ttl, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.Equal(t, time.Minute, ttl)

	count, _, err = store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	// The counter resets once its window lapses.
	*clock = clock.Add(2 * time.Minute)
	count, _, err = store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, store.Delete(ctx, "a", "b"))

	_, found, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, found)
}
