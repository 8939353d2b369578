package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickkart/marketplace/internal/domain/principal"
)

func (m *AuthMiddleware) RequireRole(required principal.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)

		if !ok || actor.Role == "" {
			abortUnauthorized(c, "Missing identity context")
			return
		}
		if actor.Role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":      "forbidden",
					"message":   "This action requires the " + string(required) + " role",
					"requestId": c.GetString(CtxRequestID),
				},
			})
			return
		}
		c.Next()
	}
}
