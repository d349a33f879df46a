package user

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meridiancrm/meridian/pkg/audit"
	"github.com/meridiancrm/meridian/pkg/cache"
)

// userStore is the persistence surface the service needs; *Store
// satisfies it and tests substitute a fake.
type userStore interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// cachedUser is the typed cache payload. It carries the full record,
// audit columns included, so a cache hit serves exactly what a miss
// would. The owning tenant is not part of it: the cache key is already
// tenant-namespaced, so storing the tenant again would only invite
// trusting the wrong copy.
type cachedUser struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	audit.Fields
}

// Service fronts the user store with tenant-scoped caching.
type Service struct {
	store userStore
	cache *cache.TenantCache
	log   *slog.Logger
}

// NewService wires the user service.
func NewService(store userStore, tenantCache *cache.TenantCache, log *slog.Logger) *Service {
	return &Service{store: store, cache: tenantCache, log: log}
}

func userKey(id uuid.UUID) string { return "user:" + id.String() }

// Create inserts a user under the bound tenant.
func (s *Service) Create(ctx context.Context, email, fullName string) (*User, error) {
	u := &User{Email: email, FullName: fullName}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user created", "user", u.ID)
	return u, nil
}

// GetByID reads through the tenant-scoped cache.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if raw, err := s.cache.Get(ctx, userKey(id)); err == nil {
		var cu cachedUser
		if json.Unmarshal(raw, &cu) == nil {
			u := &User{ID: cu.ID, Email: cu.Email, FullName: cu.FullName, Fields: cu.Fields}
			return u, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, err
	}

	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, u)
	return u, nil
}

// List returns every user in the bound tenant's scope.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}

// Update rewrites a user's attributes and invalidates its cache entry
// immediately after the successful write.
func (s *Service) Update(ctx context.Context, u *User) error {
	if err := s.store.Update(ctx, u); err != nil {
		return err
	}
	if err := s.cache.Remove(ctx, userKey(u.ID)); err != nil {
		return err
	}
	return nil
}

// Delete removes a user and invalidates its cache entry.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Remove(ctx, userKey(id)); err != nil {
		return err
	}
	return nil
}

func (s *Service) cacheSet(ctx context.Context, u *User) {
	raw, err := json.Marshal(cachedUser{ID: u.ID, Email: u.Email, FullName: u.FullName, Fields: u.Fields})
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, userKey(u.ID), raw, 0)
}
