package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridiancrm/meridian/pkg/pg"
	"github.com/meridiancrm/meridian/pkg/tenant"
)

// BootstrapTenantID is the placeholder tenant bound while tenant-table
// migrations run. It exists purely to satisfy the context-binding
// precondition of tenant-scoped code paths during schema setup and is
// never stored.
var BootstrapTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Config locates the migration inputs on disk.
type Config struct {
	GlobalDir        string `env:"MIGRATIONS_GLOBAL_DIR" envDefault:"migrations/global"`
	TenantDir        string `env:"MIGRATIONS_TENANT_DIR" envDefault:"migrations/tenant"`
	PolicyScriptPath string `env:"MIGRATIONS_POLICY_SCRIPT" envDefault:"migrations/policy/row_security.sql"`

	GlobalTable string `env:"MIGRATIONS_GLOBAL_TABLE" envDefault:"schema_migrations"`
	TenantTable string `env:"MIGRATIONS_TENANT_TABLE" envDefault:"tenant_schema_migrations"`
}

// GlobalStep migrates the global/shared schema: the tenant registry and
// other platform-level tables. Runs first because everything else
// depends on it.
func GlobalStep(pool *pgxpool.Pool, cfg Config, log *slog.Logger) Step {
	return Step{
		Name: "global schema",
		Run: func(ctx context.Context) error {
			return pg.Migrate(ctx, pool, cfg.GlobalDir, cfg.GlobalTable, log)
		},
	}
}

// TenantTablesStep migrates the tenant-scoped tables. It borrows the
// bootstrap tenant binding via RunWithTenant so any tenant-context
// precondition inside the migration path is satisfied; the binding
// cannot leak past the step.
func TenantTablesStep(pool *pgxpool.Pool, cfg Config, log *slog.Logger) Step {
	bootstrap := &tenant.Tenant{ID: BootstrapTenantID, Name: "bootstrap", Active: true}
	return Step{
		Name: "tenant tables",
		Run: func(ctx context.Context) error {
			return tenant.RunWithTenant(ctx, bootstrap, func(ctx context.Context) error {
				return pg.Migrate(ctx, pool, cfg.TenantDir, cfg.TenantTable, log)
			})
		},
	}
}

// PolicyStep executes the one-time idempotent policy script (row
// security installation) after tenant tables exist. The script is
// treated as an opaque unit: read from disk, executed verbatim, any
// failure fatal.
func PolicyStep(pool *pgxpool.Pool, cfg Config, log *slog.Logger) Step {
	return Step{
		Name: "policy script",
		Run: func(ctx context.Context) error {
			script, err := os.ReadFile(cfg.PolicyScriptPath)
			if err != nil {
				return fmt.Errorf("read policy script %s: %w", cfg.PolicyScriptPath, err)
			}
			if _, err := pool.Exec(ctx, string(script)); err != nil {
				return fmt.Errorf("apply policy script %s: %w", cfg.PolicyScriptPath, err)
			}
			log.InfoContext(ctx, "policy script applied", "path", cfg.PolicyScriptPath)
			return nil
		},
	}
}

// DefaultSteps is the canonical shared-schema migration order: global
// schema, then tenant tables, then policy scripts. Policy scripts
// assume tenant tables already exist, so the order is load-bearing.
func DefaultSteps(pool *pgxpool.Pool, cfg Config, log *slog.Logger) []Step {
	return []Step{
		GlobalStep(pool, cfg, log),
		TenantTablesStep(pool, cfg, log),
		PolicyStep(pool, cfg, log),
	}
}
