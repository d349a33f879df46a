package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// SystemActorID is the well-known technical actor stamped onto writes
// performed outside any human session: migrations, provisioning,
// background jobs, and platform-level records such as the tenant
// registry itself.
var SystemActorID = uuid.MustParse("00000000-0000-0000-0000-0000000000aa")

type actorKey struct{}

// WithActor binds the acting user to the context. The authentication
// middleware sets this once per request.
func WithActor(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

// ActorFromContext retrieves the acting user, or false when the
// operation has no human actor.
func ActorFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(actorKey{}).(uuid.UUID)
	return id, ok
}

// actorOrSystem resolves the actor to stamp: the bound user, falling
// back to the system actor.
func actorOrSystem(ctx context.Context) uuid.UUID {
	if id, ok := ActorFromContext(ctx); ok {
		return id
	}
	return SystemActorID
}

// LoggerExtractor stamps the acting user id onto log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := ActorFromContext(ctx); ok {
			return slog.String("actor_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
