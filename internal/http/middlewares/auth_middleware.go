package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quickkart/marketplace/internal/actorctx"
	"github.com/quickkart/marketplace/internal/domain/session"
)

// SessionVerifier stays small so tests can fake it easily.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (session.Session, error)
}

type AuthMiddleware struct {
	sessions SessionVerifier
}

func NewAuthMiddleware(sessions SessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":      "unauthorized",
			"message":   message,
			"requestId": c.GetString(CtxRequestID),
		},
	})
}

// RequireAuth resolves the bearer token to a live session and puts the actor
// on both the gin context and the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid session token")
			return
		}

		sess, err := m.sessions.Verify(c.Request.Context(), raw)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrExpired):
				abortUnauthorized(c, "Session expired")
			case errors.Is(err, session.ErrRevoked):
				abortUnauthorized(c, "Session has been signed out")
			default:
				abortUnauthorized(c, "Invalid or expired session")
			}
			return
		}

		actor := actorctx.Actor{
			PrincipalID: sess.PrincipalID,
			Email:       sess.Email,
			Role:        sess.Role,
			SessionID:   sess.ID,
		}

		c.Set(CtxActor, actor)
		c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// ActorFromContext saves handlers from knowing the magic key.
func ActorFromContext(c *gin.Context) (actorctx.Actor, bool) {
	v, ok := c.Get(CtxActor)
	if !ok {
		return actorctx.Actor{}, false
	}
	a, ok := v.(actorctx.Actor)
	return a, ok && a.PrincipalID != ""
}
