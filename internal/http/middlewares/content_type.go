package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	mediaJSON      = "application/json"
	mediaMultipart = "multipart/form-data"
	mediaForm      = "application/x-www-form-urlencoded"
)

// RequireJSON guards the credential, quantity and cart endpoints.
func RequireJSON() gin.HandlerFunc {
	return RequireContentType(mediaJSON)
}

// RequireProductForm guards the add-product endpoint, which carries an optional image.
func RequireProductForm() gin.HandlerFunc {
	return RequireContentType(mediaMultipart, mediaForm)
}

// RequireContentType rejects bodies whose media type is not one of accepted.
// Parameters such as charset or boundary are ignored.
func RequireContentType(accepted ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		got := strings.ToLower(c.ContentType())
		for _, want := range accepted {
			if got == want {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
			"error": gin.H{
				"code":      "unsupported_media_type",
				"message":   "Content-Type must be " + strings.Join(accepted, " or "),
				"requestId": c.GetString(CtxRequestID),
				"details":   gin.H{"accepted": accepted, "received": got},
			},
		})
	}
}
