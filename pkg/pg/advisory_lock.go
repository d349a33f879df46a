package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdvisoryLock is a session-scoped, cluster-wide mutual exclusion
// primitive keyed by a fixed numeric id. It pins a dedicated pooled
// connection for the lifetime of the lock: Postgres ties advisory locks
// to the session, so if the holding process dies the database drops the
// lock automatically and no external cleanup is needed.
type AdvisoryLock struct {
	pool *pgxpool.Pool
	key  int64
	conn *pgxpool.Conn
}

// NewAdvisoryLock creates a lock handle for the given key. The key must
// be a deployment-wide literal shared by every instance that contends
// for the same critical section, and distinct from any other
// subsystem's lock key.
func NewAdvisoryLock(pool *pgxpool.Pool, key int64) *AdvisoryLock {
	return &AdvisoryLock{pool: pool, key: key}
}

// TryAcquire makes a single non-blocking attempt to take the lock.
// It returns (false, nil) when another session already holds it; losing
// callers are expected to carry on without the critical section.
func (l *AdvisoryLock) TryAcquire(ctx context.Context) (bool, error) {
	if l.conn != nil {
		return false, ErrLockConnBusy
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire lock connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", l.key).Scan(&acquired); err != nil {
		conn.Release()
		return false, fmt.Errorf("try advisory lock %d: %w", l.key, err)
	}

	if !acquired {
		conn.Release()
		return false, nil
	}

	l.conn = conn
	return true, nil
}

// Release unlocks and returns the pinned connection to the pool.
// Safe to call when the lock was never acquired. The unlock must run on
// the same session that acquired the lock, hence the pinned connection.
func (l *AdvisoryLock) Release(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}
	defer func() {
		l.conn.Release()
		l.conn = nil
	}()

	var released bool
	if err := l.conn.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", l.key).Scan(&released); err != nil {
		return fmt.Errorf("advisory unlock %d: %w", l.key, err)
	}
	if !released {
		return fmt.Errorf("advisory unlock %d: lock was not held by this session", l.key)
	}
	return nil
}

// Held reports whether this handle currently holds the lock.
func (l *AdvisoryLock) Held() bool { return l.conn != nil }
