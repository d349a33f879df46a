package user_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiancrm/meridian/pkg/audit"
	"github.com/meridiancrm/meridian/pkg/cache"
	"github.com/meridiancrm/meridian/pkg/tenant"
	"github.com/meridiancrm/meridian/svc/user"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tenantCtx(id uuid.UUID) context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{ID: id, Active: true})
}

type storedUser struct {
	tenantID uuid.UUID
	email    string
	fullName string
	fields   audit.Fields
}

// fakeStore scopes every operation to the tenant bound to the context,
// the way the real store's schema target does.
type fakeStore struct {
	users map[uuid.UUID]storedUser
	gets  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[uuid.UUID]storedUser)}
}

func (s *fakeStore) scope(ctx context.Context) (uuid.UUID, error) {
	t, err := tenant.RequireFromContext(ctx)
	if err != nil {
		return uuid.UUID{}, err
	}
	return t.ID, nil
}

func (s *fakeStore) Create(ctx context.Context, u *user.User) error {
	tid, err := s.scope(ctx)
	if err != nil {
		return err
	}
	u.ID = uuid.New()
	u.SetTenantID(tid)
	u.StampCreate(time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC), audit.SystemActorID)
	s.users[u.ID] = storedUser{tenantID: tid, email: u.Email, fullName: u.FullName, fields: u.Fields}
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	tid, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	s.gets++
	su, ok := s.users[id]
	if !ok || su.tenantID != tid {
		return nil, user.ErrUserNotFound
	}
	u := &user.User{ID: id, Email: su.email, FullName: su.fullName, Fields: su.fields}
	u.SetTenantID(tid)
	return u, nil
}

func (s *fakeStore) List(ctx context.Context) ([]*user.User, error) {
	tid, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	var out []*user.User
	for id, su := range s.users {
		if su.tenantID != tid {
			continue
		}
		u := &user.User{ID: id, Email: su.email, FullName: su.fullName}
		u.SetTenantID(tid)
		out = append(out, u)
	}
	return out, nil
}

func (s *fakeStore) Update(ctx context.Context, u *user.User) error {
	tid, err := s.scope(ctx)
	if err != nil {
		return err
	}
	su, ok := s.users[u.ID]
	if !ok || su.tenantID != tid {
		return user.ErrUserNotFound
	}
	su.email = u.Email
	su.fullName = u.FullName
	s.users[u.ID] = su
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	tid, err := s.scope(ctx)
	if err != nil {
		return err
	}
	su, ok := s.users[id]
	if !ok || su.tenantID != tid {
		return user.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func newService(store *fakeStore) *user.Service {
	tc := cache.NewTenantCache(cache.NewMemoryStore(100), discardLogger())
	return user.NewService(store, tc, discardLogger())
}

func TestServiceGetByID(t *testing.T) {
	t.Parallel()

	t.Run("reads through the cache once", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		svc := newService(store)
		ctx := tenantCtx(uuid.New())

		created, err := svc.Create(ctx, "alice@acme.test", "Alice")
		require.NoError(t, err)

		first, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		second, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)

		assert.Equal(t, first.Email, second.Email)
		assert.Equal(t, 1, store.gets)
	})

	t.Run("cache hit serves the same record as a miss", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		svc := newService(store)
		ctx := tenantCtx(uuid.New())

		created, err := svc.Create(ctx, "alice@acme.test", "Alice")
		require.NoError(t, err)

		miss, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		hit, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, 1, store.gets)

		// Audit columns must survive the cache round trip.
		require.False(t, miss.CreatedAt.IsZero())
		assert.True(t, hit.CreatedAt.Equal(miss.CreatedAt))
		assert.True(t, hit.UpdatedAt.Equal(miss.UpdatedAt))
		assert.Equal(t, miss.CreatedBy, hit.CreatedBy)
		assert.Equal(t, miss.UpdatedBy, hit.UpdatedBy)
	})

	t.Run("cached entries stay within their tenant", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		svc := newService(store)
		ctxA := tenantCtx(uuid.New())
		ctxB := tenantCtx(uuid.New())

		created, err := svc.Create(ctxA, "alice@acme.test", "Alice")
		require.NoError(t, err)

		// Warm A's cache, then look up the same id as tenant B. B must
		// fall through to the store and come back empty.
		_, err = svc.GetByID(ctxA, created.ID)
		require.NoError(t, err)

		_, err = svc.GetByID(ctxB, created.ID)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("missing tenant binding is fatal, not a miss", func(t *testing.T) {
		t.Parallel()

		svc := newService(newFakeStore())
		_, err := svc.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, tenant.ErrMissingTenantContext)
	})
}

func TestServiceUpdate(t *testing.T) {
	t.Parallel()

	t.Run("invalidates the cached entry", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		svc := newService(store)
		ctx := tenantCtx(uuid.New())

		created, err := svc.Create(ctx, "alice@acme.test", "Alice")
		require.NoError(t, err)
		_, err = svc.GetByID(ctx, created.ID) // warm
		require.NoError(t, err)

		created.FullName = "Alice Smith"
		require.NoError(t, svc.Update(ctx, created))

		got, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice Smith", got.FullName)
		assert.Equal(t, 2, store.gets)
	})

	t.Run("foreign tenant cannot update", func(t *testing.T) {
		t.Parallel()

		svc := newService(newFakeStore())
		ctxA := tenantCtx(uuid.New())
		ctxB := tenantCtx(uuid.New())

		created, err := svc.Create(ctxA, "alice@acme.test", "Alice")
		require.NoError(t, err)

		created.FullName = "Mallory"
		err = svc.Update(ctxB, created)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestServiceDelete(t *testing.T) {
	t.Parallel()

	t.Run("removes the row and the cached entry", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		svc := newService(store)
		ctx := tenantCtx(uuid.New())

		created, err := svc.Create(ctx, "alice@acme.test", "Alice")
		require.NoError(t, err)
		_, err = svc.GetByID(ctx, created.ID) // warm
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, created.ID))

		_, err = svc.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("foreign tenant cannot delete", func(t *testing.T) {
		t.Parallel()

		svc := newService(newFakeStore())
		ctxA := tenantCtx(uuid.New())
		ctxB := tenantCtx(uuid.New())

		created, err := svc.Create(ctxA, "alice@acme.test", "Alice")
		require.NoError(t, err)

		err = svc.Delete(ctxB, created.ID)
		assert.ErrorIs(t, err, user.ErrUserNotFound)

		got, err := svc.GetByID(ctxA, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@acme.test", got.Email)
	})
}

func TestServiceList(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newService(store)
	ctxA := tenantCtx(uuid.New())
	ctxB := tenantCtx(uuid.New())

	_, err := svc.Create(ctxA, "alice@acme.test", "Alice")
	require.NoError(t, err)
	_, err = svc.Create(ctxA, "bob@acme.test", "Bob")
	require.NoError(t, err)
	_, err = svc.Create(ctxB, "carol@globex.test", "Carol")
	require.NoError(t, err)

	usersA, err := svc.List(ctxA)
	require.NoError(t, err)
	assert.Len(t, usersA, 2)

	usersB, err := svc.List(ctxB)
	require.NoError(t, err)
	assert.Len(t, usersB, 1)
	assert.Equal(t, "carol@globex.test", usersB[0].Email)
}
