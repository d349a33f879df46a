package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss is the only expected Get outcome besides a hit.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable wraps store transport failures. Callers of the
	// tenant-scoped layer never see it: unavailability degrades to a
	// miss so the authoritative store stays the fallback.
	ErrCacheUnavailable = errors.New("cache unavailable")
)

// DefaultTTL is the fixed default expiry applied when callers pass a
// zero TTL.
const DefaultTTL = 10 * time.Minute

// Store is the underlying cache by opaque string key. Implementations
// must be safe for concurrent use. Only the wrappers in this package
// are permitted to compute final key strings.
type Store interface {
	// Get returns the stored bytes or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores val under key with the given TTL (DefaultTTL when zero).
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
