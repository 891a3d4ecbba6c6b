// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file bridges the distributed token-bucket limiter into Gin. Unlike a
// process-local limiter, the bucket state lives in the shared store, so the
// limit holds across every server process; this middleware only decides the
// bucket key, invokes the limiter, and translates the outcome to HTTP.
//
// Failure semantics: when the shared store is unreachable the middleware
// fails closed with a 503 by default; constructing it with failOpen admits
// the request instead (an explicit configuration choice, never the default).
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// keyFunc selects the identity used to key a rate-limit bucket.
//
// Implementations should return a stable string for the duration of a
// request (e.g. "session:<token>" or "ip:<addr>").
type keyFunc func(*gin.Context) string

// KeyBySessionOrIP returns a keyFunc that prefers the validated session
// token (set by RequireSession) and falls back to the client IP address.
//
// The resulting keys are prefixed to avoid collisions between session and
// IP namespaces (e.g., "session:h2J9…" vs "ip:203.0.113.7").
func KeyBySessionOrIP() keyFunc {
	return func(c *gin.Context) string {
		if tok := SessionTokenFrom(c); tok != "" {
			return "session:" + tok
		}
		return "ip:" + c.ClientIP()
	}
}

// rateDenials counts rejected and failed admission checks.
var rateDenials = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rate_limiter_rejections_total",
		Help: "Admission checks that did not admit, by outcome (denied|error).",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(rateDenials)
}

// RateLimit returns middleware enforcing the shared token bucket.
//
// Behavior:
//   - allowed  → the request proceeds.
//   - denied   → 429 with the fixed reason "rate limit exceeded" and a
//     minimal Retry-After header.
//   - store error → 503 (fail closed) unless failOpen is set, in which case
//     the request is admitted and the failure logged by the caller's access
//     log as part of normal request logging.
func RateLimit(allow func(c *gin.Context, key string) (bool, error), keyFn keyFunc, failOpen bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := allow(c, keyFn(c))
		if err != nil {
			rateDenials.WithLabelValues("error").Inc()
			if failOpen {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "upstream_unavailable",
				"message":    "rate limiter unavailable",
			})
			return
		}
		if !allowed {
			rateDenials.WithLabelValues("denied").Inc()
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "rate_limited",
				"message":    "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
