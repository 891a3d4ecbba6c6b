// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, session validation, and distributed rate limiting.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Session check strictly before admission control: an invalid session
//     never consumes a rate-limit token
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/platefinder/go-reviews-backend/internal/cache"
	"github.com/platefinder/go-reviews-backend/internal/config"
	"github.com/platefinder/go-reviews-backend/internal/http/handlers"
	"github.com/platefinder/go-reviews-backend/internal/http/middleware"
	"github.com/platefinder/go-reviews-backend/internal/provider"
	"github.com/platefinder/go-reviews-backend/internal/ratelimit"
	"github.com/platefinder/go-reviews-backend/internal/scoring"
	"github.com/platefinder/go-reviews-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), CORS and security
// headers, health and metrics endpoints, and then mounts the versioned
// public API under the configured base path.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS and security headers
//
// Per-route on the reviews endpoint, in this order:
//  8. RequireSession (authentication)
//  9. RateLimit (admission control, keyed by session)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (64 KiB: the API only accepts tiny payloads)
	r.Use(limitBody(64 << 10))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture (safe defaults: allow all if none configured)
	corsHeaders := []string{
		"Origin", "Content-Type", "Accept",
		handlers.HeaderAppSecret, middleware.HeaderSessionToken,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers
	r.Use(middleware.SecurityHeaders())

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/cache/provider
	sessionSvc := services.NewSessionService(db, cfg.Session.AppSecret, cfg.Session.Duration, cfg.Session.TokenLength)
	reviewSvc := &services.ReviewService{
		DB:    db,
		Cache: cache.NewReviewCache(rdb, cfg.CacheTTL),
		Provider: provider.New(provider.Options{
			BaseURL:  cfg.Provider.BaseURL,
			APIKey:   cfg.Provider.APIKey,
			Limit:    cfg.Provider.Limit,
			Language: cfg.Provider.Language,
			Timeout:  cfg.Provider.Timeout,
		}),
		Scorer:          scoring.NewAnalyzer(),
		Language:        scoring.NewEnglishDetector(),
		FreshnessWindow: cfg.FreshnessWindow,
		MaxReviews:      cfg.Provider.Limit,
	}
	h := handlers.New(sessionSvc, reviewSvc)

	// Distributed token bucket over the shared store.
	bucket := ratelimit.NewBucket(ratelimit.NewRedisStore(rdb), cfg.RateRPS, cfg.RateCapacity)

	requireSession := middleware.RequireSession(func(c *gin.Context, token string) bool {
		return sessionSvc.Validate(c.Request.Context(), token)
	})
	rateLimit := middleware.RateLimit(func(c *gin.Context, key string) (bool, error) {
		return bucket.Allow(c.Request.Context(), key)
	}, middleware.KeyBySessionOrIP(), cfg.RateFailOpen)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Session issuance: app-secret gated, neither session- nor rate-limited.
		api.POST("/sessions", h.CreateSession)

		// Reviews: session first, then admission control.
		api.GET("/reviews", requireSession, rateLimit, h.GetReviews)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
