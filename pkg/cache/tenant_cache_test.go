package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiancrm/meridian/pkg/cache"
	"github.com/meridiancrm/meridian/pkg/tenant"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tenantCtx(id uuid.UUID) context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{ID: id, Active: true})
}

// downStore simulates an unreachable backend.
type downStore struct{}

func (downStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, cache.ErrCacheUnavailable
}

func (downStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return cache.ErrCacheUnavailable
}

func (downStore) Delete(ctx context.Context, keys ...string) error {
	return cache.ErrCacheUnavailable
}

func TestTenantCacheIsolation(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore(10)
	c := cache.NewTenantCache(store, discardLogger())

	ctxA := tenantCtx(uuid.New())
	ctxB := tenantCtx(uuid.New())

	require.NoError(t, c.Set(ctxA, "user:42", []byte("alice"), time.Minute))

	t.Run("owner reads its entry", func(t *testing.T) {
		got, err := c.Get(ctxA, "user:42")
		require.NoError(t, err)
		assert.Equal(t, []byte("alice"), got)
	})

	t.Run("same key under another tenant misses", func(t *testing.T) {
		_, err := c.Get(ctxB, "user:42")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("tenants write the same key independently", func(t *testing.T) {
		require.NoError(t, c.Set(ctxB, "user:42", []byte("bob"), time.Minute))

		got, err := c.Get(ctxA, "user:42")
		require.NoError(t, err)
		assert.Equal(t, []byte("alice"), got)

		got, err = c.Get(ctxB, "user:42")
		require.NoError(t, err)
		assert.Equal(t, []byte("bob"), got)
	})

	t.Run("remove only touches the caller's namespace", func(t *testing.T) {
		require.NoError(t, c.Remove(ctxB, "user:42"))

		_, err := c.Get(ctxB, "user:42")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)

		got, err := c.Get(ctxA, "user:42")
		require.NoError(t, err)
		assert.Equal(t, []byte("alice"), got)
	})
}

func TestTenantCacheMissingTenant(t *testing.T) {
	t.Parallel()

	c := cache.NewTenantCache(cache.NewMemoryStore(10), discardLogger())
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, tenant.ErrMissingTenantContext)

	err = c.Set(ctx, "k", []byte("v"), time.Minute)
	assert.ErrorIs(t, err, tenant.ErrMissingTenantContext)

	err = c.Remove(ctx, "k")
	assert.ErrorIs(t, err, tenant.ErrMissingTenantContext)
}

func TestTenantCacheDegradesOnStoreFailure(t *testing.T) {
	t.Parallel()

	c := cache.NewTenantCache(downStore{}, discardLogger())
	ctx := tenantCtx(uuid.New())

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Remove(ctx, "k"))
}

func TestGlobalCache(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore(10)
	g := cache.NewGlobalCache(store, discardLogger())
	ctx := context.Background()

	t.Run("works without a tenant binding", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, g.Set(ctx, "tenant:host:a.example.com", []byte("x"), time.Minute))
		got, err := g.Get(ctx, "tenant:host:a.example.com")
		require.NoError(t, err)
		assert.Equal(t, []byte("x"), got)
	})

	t.Run("never collides with tenant namespaces", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		tc := cache.NewTenantCache(store, discardLogger())
		require.NoError(t, tc.Set(tenantCtx(id), "shared-key", []byte("tenant"), time.Minute))
		require.NoError(t, g.Set(ctx, "shared-key", []byte("global"), time.Minute))

		got, err := tc.Get(tenantCtx(id), "shared-key")
		require.NoError(t, err)
		assert.Equal(t, []byte("tenant"), got)

		got, err = g.Get(ctx, "shared-key")
		require.NoError(t, err)
		assert.Equal(t, []byte("global"), got)
	})

	t.Run("degrades on store failure", func(t *testing.T) {
		t.Parallel()

		down := cache.NewGlobalCache(downStore{}, discardLogger())
		_, err := down.Get(ctx, "k")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
		assert.NoError(t, down.Set(ctx, "k", []byte("v"), time.Minute))
		assert.NoError(t, down.Remove(ctx, "k"))
	})

	t.Run("remove invalidates", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, g.Set(ctx, "gone", []byte("x"), time.Minute))
		require.NoError(t, g.Remove(ctx, "gone"))
		_, err := g.Get(ctx, "gone")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})
}
