package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meridiancrm/meridian/pkg/hosting"
)

// LockKey is the deployment-wide advisory lock id guarding schema
// migration. Every instance of the same deployment must use this exact
// literal, and no other subsystem may reuse it.
const LockKey int64 = 874213009

var (
	// ErrLockNotAcquired means another instance is running migrations.
	// This is an expected startup outcome, not a failure: the losing
	// instance logs it and continues serving once migrations finish
	// elsewhere.
	ErrLockNotAcquired = errors.New("migration lock held by another instance")

	// ErrMigrationFailed wraps any failure inside a migration step.
	// Fatal to the instance's startup; a partially migrated schema is
	// worse than a refused boot.
	ErrMigrationFailed = errors.New("migration failed")
)

// Locker is the cluster-wide mutual exclusion primitive. pg.AdvisoryLock
// satisfies it.
type Locker interface {
	// TryAcquire makes one bounded, non-blocking attempt.
	TryAcquire(ctx context.Context) (bool, error)
	// Release must be safe to call exactly once after a successful
	// TryAcquire, on every exit path.
	Release(ctx context.Context) error
}

// Step is one ordered unit of migration work.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Coordinator makes first-boot and upgrade-boot migration safe when
// several instances start concurrently against the same database.
// Exactly one instance wins the advisory lock and applies the steps in
// order; the rest skip and serve traffic.
type Coordinator struct {
	mode   hosting.Mode
	locker Locker
	steps  []Step
	log    *slog.Logger
}

// NewCoordinator builds a coordinator for the process hosting mode.
func NewCoordinator(mode hosting.Mode, locker Locker, log *slog.Logger, steps ...Step) *Coordinator {
	return &Coordinator{mode: mode, locker: locker, steps: steps, log: log}
}

// Run executes the migration wave.
//
// Schema-per-tenant deployments skip entirely: per-tenant schemas are
// migrated by the provisioning pipeline, not at boot. Otherwise one
// bounded lock attempt decides the single migrator. The lock is
// released on every path out of this function, including step failure,
// cancellation, and panic; release uses a context detached from the
// caller's cancellation so a deployment timeout cannot strand the lock.
func (c *Coordinator) Run(ctx context.Context) error {
	if c.mode == hosting.ModeSchemaPerTenant {
		c.log.InfoContext(ctx, "skipping migration coordination", "reason", "per-tenant schemas are migrated by provisioning", "mode", c.mode)
		return nil
	}

	acquired, err := c.locker.TryAcquire(ctx)
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	if !acquired {
		c.log.InfoContext(ctx, "migration lock not acquired, another instance is migrating")
		return ErrLockNotAcquired
	}

	defer func() {
		if err := c.locker.Release(context.WithoutCancel(ctx)); err != nil {
			c.log.ErrorContext(ctx, "failed to release migration lock", "error", err)
		}
	}()

	c.log.InfoContext(ctx, "migration lock acquired, applying migrations", "steps", len(c.steps))

	for _, step := range c.steps {
		if err := ctx.Err(); err != nil {
			return errors.Join(ErrMigrationFailed, fmt.Errorf("cancelled before step %q: %w", step.Name, err))
		}
		c.log.InfoContext(ctx, "running migration step", "step", step.Name)
		if err := step.Run(ctx); err != nil {
			return errors.Join(ErrMigrationFailed, fmt.Errorf("step %q: %w", step.Name, err))
		}
	}

	c.log.InfoContext(ctx, "migrations applied")
	return nil
}
