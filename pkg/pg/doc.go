// Package pg wraps PostgreSQL access with the pgx/v5 driver: pool
// connection with retry, goose migrations bridged through database/sql,
// a session-scoped advisory lock for cross-process coordination, health
// checks, and error-classification helpers.
//
// The advisory lock deserves a note: it pins one pooled connection so
// acquire and release happen on the same database session. Sessions own
// advisory locks, so a crashed holder never leaves the lock stuck.
package pg
