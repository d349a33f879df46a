package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridiancrm/meridian/pkg/audit"
	"github.com/meridiancrm/meridian/pkg/schema"
)

// ErrUserNotFound is returned when no user matches within the current
// tenant scope. A row owned by another tenant is indistinguishable from
// a missing row, which is the point.
var ErrUserNotFound = errors.New("user not found")

const usersTable = "users"

const userColumns = `id, tenant_id, email, full_name, created_at, updated_at, created_by, updated_by`

// Store persists users. Every operation resolves a fresh schema.Target
// from the bound tenant, qualifies table names with it, and applies the
// tenant predicate whenever the target demands a row filter. There is
// no unscoped query path.
type Store struct {
	pool    *pgxpool.Pool
	router  *schema.Router
	stamper *audit.Stamper
}

// NewStore wires the user store to the routing and stamping machinery.
func NewStore(pool *pgxpool.Pool, router *schema.Router, stamper *audit.Stamper) *Store {
	return &Store{pool: pool, router: router, stamper: stamper}
}

// Create inserts a user under the bound tenant. The stamper fills the
// tenant id (set-once) and audit columns before the row is written; the
// tenant_id column is always populated, advisory though it is in
// schema-per-tenant mode.
func (s *Store) Create(ctx context.Context, u *User) error {
	if err := s.stamper.StampInsert(ctx, u); err != nil {
		return err
	}
	target, err := s.router.ResolveTarget(ctx)
	if err != nil {
		return err
	}

	if u.ID == (uuid.UUID{}) {
		u.ID = uuid.New()
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		target.Qualify(usersTable), userColumns)

	_, err = s.pool.Exec(ctx, query,
		u.ID, u.TenantID(), u.Email, u.FullName,
		u.CreatedAt, u.UpdatedAt, u.CreatedBy, u.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user within the bound tenant's scope.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	target, err := s.router.ResolveTarget(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, target.Qualify(usersTable))
	args := []any{id}
	if target.RowFilter {
		query += ` AND tenant_id = $2`
		args = append(args, target.TenantID)
	}

	return scanUser(s.pool.QueryRow(ctx, query, args...))
}

// List returns every user visible in the bound tenant's scope.
func (s *Store) List(ctx context.Context) ([]*User, error) {
	target, err := s.router.ResolveTarget(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, userColumns, target.Qualify(usersTable))
	var args []any
	if target.RowFilter {
		query += ` WHERE tenant_id = $1`
		args = append(args, target.TenantID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update rewrites the mutable attributes of a user in scope.
func (s *Store) Update(ctx context.Context, u *User) error {
	s.stamper.StampUpdate(ctx, u)

	target, err := s.router.ResolveTarget(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET email = $2, full_name = $3, updated_at = $4, updated_by = $5 WHERE id = $1`,
		target.Qualify(usersTable))
	args := []any{u.ID, u.Email, u.FullName, u.UpdatedAt, u.UpdatedBy}
	if target.RowFilter {
		query += ` AND tenant_id = $6`
		args = append(args, target.TenantID)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user in scope.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	target, err := s.router.ResolveTarget(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, target.Qualify(usersTable))
	args := []any{id}
	if target.RowFilter {
		query += ` AND tenant_id = $2`
		args = append(args, target.TenantID)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var tenantID uuid.UUID
	err := row.Scan(&u.ID, &tenantID, &u.Email, &u.FullName,
		&u.CreatedAt, &u.UpdatedAt, &u.CreatedBy, &u.UpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.SetTenantID(tenantID)
	return &u, nil
}
