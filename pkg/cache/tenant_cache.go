package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/meridiancrm/meridian/pkg/tenant"
)

// TenantCache namespaces every key with the tenant bound to the calling
// context, so an entry written under tenant A is unreachable under
// tenant B by construction. Callers pass plain keys ("user:42") and
// never see the final key string.
//
// Store failures degrade: Get reports a miss, Set and Remove become
// no-ops, all logged at warn. A missing tenant binding does NOT
// degrade — it is an isolation violation and surfaces as
// tenant.ErrMissingTenantContext.
type TenantCache struct {
	store Store
	log   *slog.Logger
}

// NewTenantCache wraps a store with tenant key discipline.
func NewTenantCache(store Store, log *slog.Logger) *TenantCache {
	return &TenantCache{store: store, log: log}
}

func (c *TenantCache) key(ctx context.Context, key string) (string, error) {
	id, ok := tenant.IDFromContext(ctx)
	if !ok {
		return "", tenant.ErrMissingTenantContext
	}
	return "t:" + id.String() + ":" + key, nil
}

// Get returns the cached bytes for the tenant-namespaced key, or
// ErrCacheMiss. Store unavailability is reported as a miss.
func (c *TenantCache) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := c.key(ctx, key)
	if err != nil {
		return nil, err
	}

	val, err := c.store.Get(ctx, k)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.WarnContext(ctx, "cache get degraded to miss", "key", key, "error", err)
		}
		return nil, ErrCacheMiss
	}
	return val, nil
}

// Set stores val under the tenant-namespaced key.
func (c *TenantCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	k, err := c.key(ctx, key)
	if err != nil {
		return err
	}

	if err := c.store.Set(ctx, k, val, ttl); err != nil {
		c.log.WarnContext(ctx, "cache set dropped", "key", key, "error", err)
	}
	return nil
}

// Remove invalidates tenant-namespaced keys. Mutating services call
// this immediately after a successful write that could invalidate a
// cached read; expiry alone is not the invalidation strategy.
func (c *TenantCache) Remove(ctx context.Context, keys ...string) error {
	namespaced := make([]string, 0, len(keys))
	for _, key := range keys {
		k, err := c.key(ctx, key)
		if err != nil {
			return err
		}
		namespaced = append(namespaced, k)
	}

	if err := c.store.Delete(ctx, namespaced...); err != nil {
		c.log.WarnContext(ctx, "cache remove dropped", "keys", keys, "error", err)
	}
	return nil
}

// GlobalCache holds the few explicitly cross-tenant entries, namespaced
// under "g:" so they can never collide with tenant keys. Every key that
// goes through it must be individually justified; today the only users
// are the tenant registry's id- and host-keyed entries, which exist
// before any tenant scope does.
type GlobalCache struct {
	store Store
	log   *slog.Logger
}

// NewGlobalCache wraps a store for cross-tenant entries.
func NewGlobalCache(store Store, log *slog.Logger) *GlobalCache {
	return &GlobalCache{store: store, log: log}
}

func (c *GlobalCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.store.Get(ctx, "g:"+key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.WarnContext(ctx, "cache get degraded to miss", "key", key, "error", err)
		}
		return nil, ErrCacheMiss
	}
	return val, nil
}

func (c *GlobalCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := c.store.Set(ctx, "g:"+key, val, ttl); err != nil {
		c.log.WarnContext(ctx, "cache set dropped", "key", key, "error", err)
	}
	return nil
}

func (c *GlobalCache) Remove(ctx context.Context, keys ...string) error {
	namespaced := make([]string, 0, len(keys))
	for _, key := range keys {
		namespaced = append(namespaced, "g:"+key)
	}
	if err := c.store.Delete(ctx, namespaced...); err != nil {
		c.log.WarnContext(ctx, "cache remove dropped", "keys", keys, "error", err)
	}
	return nil
}
