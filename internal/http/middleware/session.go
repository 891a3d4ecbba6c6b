// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the session guard: every rate-limited endpoint
// requires a valid session token before the token-bucket limiter runs, so
// an invalid session can never consume a rate-limit token. Authentication
// and admission control stay independent layers, composed in that order.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderSessionToken carries the opaque session credential.
	HeaderSessionToken = "X-Session-Token"

	// sessionTokenKey is the Gin context key under which the validated token
	// is stored, for downstream consumers such as the rate-limit key func.
	sessionTokenKey = "sessionToken"
)

// SessionValidator reports whether a session token identifies an ACTIVE
// session. Implementations must treat lookup failures as invalid. The
// request context is passed through for cancellation.
type SessionValidator func(c *gin.Context, token string) bool

// RequireSession returns middleware that rejects requests without a valid
// session token (HTTP 401). On success the token is stashed in the context
// so the rate limiter can bucket by session.
func RequireSession(validate SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(HeaderSessionToken))
		if token == "" || !validate(c, token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "invalid or missing session token",
			})
			return
		}
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

// SessionTokenFrom returns the validated session token for this request, or
// "" when the session guard has not run.
func SessionTokenFrom(c *gin.Context) string {
	if v, ok := c.Get(sessionTokenKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
