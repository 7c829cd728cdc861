package middleware

import (
	"cinecity-client/internal/metrics"
	"cinecity-client/internal/model"
	"cinecity-client/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	sessionKey = "session"
	// ExpiredKey is set when the backend rejected the session during the request
	ExpiredKey = "session_expired"
)

// Session binds a cookie-backed session manager to every request
func Session(codec sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := session.NewManager(session.NewCookieStore(codec, c.Request, c.Writer))
		m.OnExpired(func() {
			c.Set(ExpiredKey, true)
			metrics.RecordSessionExpired()
		})
		c.Set(sessionKey, m)
		c.Next()
	}
}

// SessionFrom returns the request's session manager
func SessionFrom(c *gin.Context) *session.Manager {
	if v, ok := c.Get(sessionKey); ok {
		if m, ok := v.(*session.Manager); ok {
			return m
		}
	}
	return session.NewManager(session.NewMemoryStore(model.Credential{}))
}

// Expired reports whether a 401 cleared the session during this request
func Expired(c *gin.Context) bool {
	return c.GetBool(ExpiredKey)
}
