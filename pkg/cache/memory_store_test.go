package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiancrm/meridian/pkg/cache"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore(10)
		require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("absent key misses", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore(10)
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("expired entry misses", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore(10)
		require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Nanosecond))
		time.Sleep(5 * time.Millisecond)

		_, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("evicts least recently used at capacity", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore(2)
		require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
		require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Minute))

		// Touch "a" so "b" becomes the eviction candidate.
		_, err := store.Get(ctx, "a")
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, "c", []byte("3"), time.Minute))

		_, err = store.Get(ctx, "b")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
		_, err = store.Get(ctx, "a")
		assert.NoError(t, err)
		_, err = store.Get(ctx, "c")
		assert.NoError(t, err)
	})

	t.Run("delete removes multiple keys", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore(10)
		require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
		require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Minute))

		require.NoError(t, store.Delete(ctx, "a", "b", "absent"))

		_, err := store.Get(ctx, "a")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
		_, err = store.Get(ctx, "b")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("set overwrites existing value", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore(10)
		require.NoError(t, store.Set(ctx, "k", []byte("v1"), time.Minute))
		require.NoError(t, store.Set(ctx, "k", []byte("v2"), time.Minute))

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})
}
