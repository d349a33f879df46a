// Package cache provides the tenant-scoped caching layer.
//
// Store is the raw byte cache (Redis in production, an in-memory LRU
// for tests and single-node setups). TenantCache is the only sanctioned
// way request-path code touches it: every key is transparently prefixed
// with the bound tenant id, so cache entries cannot cross tenant
// boundaries no matter what key a caller picks. GlobalCache carries the
// short, explicit list of cross-tenant entries (the tenant registry's
// own lookups).
//
// Cache unavailability is never a request failure; reads degrade to
// misses and writes are dropped with a warning. A missing tenant
// binding is the one exception — that aborts the operation, because
// guessing a namespace would be a data-isolation bug.
package cache
