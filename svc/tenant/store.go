package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridiancrm/meridian/pkg/pg"
	"github.com/meridiancrm/meridian/pkg/tenant"
)

// tenantsTable is fully qualified: the registry is a global table and
// never routes through tenant schema resolution.
const tenantsTable = "admin.tenants"

const tenantColumns = `id, name, host, contact_email, timezone, active, schema_name,
	created_at, updated_at, created_by, updated_by`

// Store persists tenant records in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store; migrations are expected to have created the
// table already.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Insert writes a new tenant. A host collision with another active
// tenant surfaces as tenant.ErrHostAlreadyInUse, never as a silent
// overwrite.
func (s *Store) Insert(ctx context.Context, t *tenant.Tenant) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		tenantsTable, tenantColumns)

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.Name, t.Host, t.ContactEmail, t.Timezone, t.Active,
		nullable(t.SchemaName), t.CreatedAt, t.UpdatedAt, t.CreatedBy, t.UpdatedBy,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return tenant.ErrHostAlreadyInUse
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// Update rewrites the mutable tenant attributes.
func (s *Store) Update(ctx context.Context, t *tenant.Tenant) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, host = $3, contact_email = $4, timezone = $5,
			active = $6, schema_name = $7, updated_at = $8, updated_by = $9
		WHERE id = $1`, tenantsTable)

	tag, err := s.pool.Exec(ctx, query,
		t.ID, t.Name, t.Host, t.ContactEmail, t.Timezone, t.Active,
		nullable(t.SchemaName), t.UpdatedAt, t.UpdatedBy,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return tenant.ErrHostAlreadyInUse
		}
		return fmt.Errorf("update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

// GetByID fetches a tenant regardless of active flag; operators need to
// see deactivated tenants too.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, tenantColumns, tenantsTable)
	return scanTenant(s.pool.QueryRow(ctx, query, id))
}

// GetByHost fetches the active tenant owning host. Inactive tenants do
// not own hosts: the partial unique index only covers active rows.
func (s *Store) GetByHost(ctx context.Context, host string) (*tenant.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE host = $1 AND active`, tenantColumns, tenantsTable)
	return scanTenant(s.pool.QueryRow(ctx, query, host))
}

// ListActive returns all active tenants, newest first.
func (s *Store) ListActive(ctx context.Context) ([]*tenant.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE active ORDER BY created_at DESC`, tenantColumns, tenantsTable)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	var schemaName *string
	err := row.Scan(&t.ID, &t.Name, &t.Host, &t.ContactEmail, &t.Timezone, &t.Active,
		&schemaName, &t.CreatedAt, &t.UpdatedAt, &t.CreatedBy, &t.UpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	if schemaName != nil {
		t.SchemaName = *schemaName
	}
	return &t, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
