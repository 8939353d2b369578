// Package actorctx carries the authenticated session through context.Context
// so services never read identity from ambient state.
package actorctx

import (
	"context"

	"github.com/quickkart/marketplace/internal/domain/principal"
)

type ctxKey string

const (
	keyActor     ctxKey = "actor"
	keyRequestID ctxKey = "request_id"
)

type Actor struct {
	PrincipalID string
	Email       string
	Role        principal.Role
	SessionID   string
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, keyActor, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(keyActor).(Actor)

	return a, ok && a.PrincipalID != ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)

	return v, ok && v != ""
}
