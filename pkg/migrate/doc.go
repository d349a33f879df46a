// Package migrate coordinates schema migration across concurrently
// starting application instances.
//
// A session-scoped Postgres advisory lock (pg.AdvisoryLock, LockKey) is
// the sole correctness mechanism: the single instance that wins one
// non-blocking acquisition attempt applies the ordered steps — global
// schema, tenant tables under a bootstrap tenant binding, then the
// idempotent row-security policy script. Losers observe
// ErrLockNotAcquired, log it, and continue startup. Because the lock is
// session-scoped, a crashed migrator cannot strand it.
//
// Schema-per-tenant deployments skip boot-time coordination entirely;
// per-tenant schemas are migrated by the provisioning pipeline.
package migrate
