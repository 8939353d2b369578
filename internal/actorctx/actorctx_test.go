package actorctx

import (
	"context"
	"testing"

	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/stretchr/testify/assert"
)

func TestActorRoundTrip(t *testing.T) {
	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)

	ctx := WithActor(context.Background(), Actor{PrincipalID: "p1", Email: "a@x.com", Role: principal.RoleSeller, SessionID: "s1"})

	a, ok := ActorFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "a@x.com", a.Email)
	assert.Equal(t, principal.RoleSeller, a.Role)

	_, ok = ActorFrom(WithActor(context.Background(), Actor{}))
	assert.False(t, ok)
}

func TestRequestID(t *testing.T) {
	_, ok := RequestIDFrom(context.Background())
	assert.False(t, ok)

	id, ok := RequestIDFrom(WithRequestID(context.Background(), "req-1"))
	assert.True(t, ok)
	assert.Equal(t, "req-1", id)
}
