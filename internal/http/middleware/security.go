// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, a hardening middleware that attaches a
// conservative set of HTTP security headers suitable for a JSON API running
// behind a reverse proxy. No CSP is emitted since the API never serves HTML.
package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders returns a Gin middleware that adds baseline hardening
// headers to every response. Responses carrying session tokens should not
// be cached anywhere, so Cache-Control: no-store is always set.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}
