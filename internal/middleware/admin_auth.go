package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"cinecity-client/internal/model"

	"github.com/gin-gonic/gin"
)

// AdminAuth guards the admin routes with a static API key.
// An empty key disables the check.
func AdminAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		// 支持 "Bearer <key>"、"ApiKey <key>" 和 X-Admin-Key
		key := c.GetHeader("X-Admin-Key")
		if key == "" {
			auth := c.GetHeader("Authorization")
			key = strings.TrimPrefix(strings.TrimPrefix(auth, "Bearer "), "ApiKey ")
		}
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.APIResponse{
				Code:  http.StatusUnauthorized,
				Error: "missing admin API key",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, model.APIResponse{
				Code:  http.StatusForbidden,
				Error: "invalid admin API key",
			})
			return
		}

		c.Next()
	}
}
