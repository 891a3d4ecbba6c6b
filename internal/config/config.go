// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database and Redis connectivity, session
// issuance, rate limiting, the review provider, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// RedisConfig defines connectivity for the shared store (review cache and
// rate-limiter bucket state). Every operation against it carries a bounded
// timeout so a slow store surfaces a retryable failure instead of hanging
// the request.
type RedisConfig struct {
	Addr         string        // REDIS_ADDR, host:port
	DB           int           // REDIS_DB
	DialTimeout  time.Duration // REDIS_DIAL_TIMEOUT
	ReadTimeout  time.Duration // REDIS_READ_TIMEOUT
	WriteTimeout time.Duration // REDIS_WRITE_TIMEOUT
}

// SessionConfig defines anonymous session issuance.
type SessionConfig struct {
	AppSecret   string        // APP_SECRET, authenticates the calling application
	Duration    time.Duration // SESSION_DURATION, token lifetime
	TokenLength int           // SESSION_TOKEN_LENGTH, alphanumeric characters
}

// ProviderConfig defines the external paid review provider.
type ProviderConfig struct {
	APIKey   string        // OUTSCRAPER_API_KEY
	BaseURL  string        // OUTSCRAPER_BASE_URL
	Timeout  time.Duration // PROVIDER_TIMEOUT
	Limit    int           // REVIEW_LIMIT, reviews requested per fetch
	Language string        // REVIEW_LANGUAGE, target review language
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-reviews-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// Durable store
	DBPath string // SQLite path

	// Shared store
	Redis RedisConfig

	// Sessions
	Session SessionConfig

	// Rate limiting (distributed token bucket)
	RateRPS      float64 // tokens refilled per second (>= 0)
	RateCapacity int     // bucket capacity (>= 1)
	RateFailOpen bool    // admit when the shared store is unreachable

	// Retrieval pipeline
	CacheTTL        time.Duration // review cache expiry
	FreshnessWindow time.Duration // max age of durable rows served without a provider fetch

	// External provider
	Provider ProviderConfig

	// Web protection
	CORS CORSConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Durable store
		DBPath: getenv("DB_PATH", "app.db"),

		// Shared store
		Redis: RedisConfig{
			Addr:         getenv("REDIS_ADDR", "localhost:6379"),
			DB:           getint("REDIS_DB", 0),
			DialTimeout:  getdur("REDIS_DIAL_TIMEOUT", 3*time.Second),
			ReadTimeout:  getdur("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getdur("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},

		// Sessions
		Session: SessionConfig{
			AppSecret:   getenv("APP_SECRET", ""),
			Duration:    getdur("SESSION_DURATION", 7*24*time.Hour),
			TokenLength: getint("SESSION_TOKEN_LENGTH", 32),
		},

		// Rate limiting
		RateRPS:      getfloat("RATE_RPS", 1.0),
		RateCapacity: getint("RATE_CAPACITY", 10),
		RateFailOpen: getbool("RATE_FAIL_OPEN", false),

		// Retrieval pipeline
		CacheTTL:        getdur("CACHE_TTL", 24*time.Hour),
		FreshnessWindow: getdur("FRESHNESS_WINDOW", 7*24*time.Hour),

		// External provider
		Provider: ProviderConfig{
			APIKey:   getenv("OUTSCRAPER_API_KEY", ""),
			BaseURL:  getenv("OUTSCRAPER_BASE_URL", "https://api.app.outscraper.com"),
			Timeout:  getdur("PROVIDER_TIMEOUT", 15*time.Second),
			Limit:    getint("REVIEW_LIMIT", 30),
			Language: getenv("REVIEW_LANGUAGE", "en"),
		},

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-reviews-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return cfg, errors.New("REDIS_ADDR must not be empty")
	}
	if cfg.Redis.DialTimeout <= 0 || cfg.Redis.ReadTimeout <= 0 || cfg.Redis.WriteTimeout <= 0 {
		return cfg, errors.New("redis timeouts must be positive durations")
	}
	if cfg.Session.Duration <= 0 {
		return cfg, errors.New("SESSION_DURATION must be > 0")
	}
	if cfg.Session.TokenLength < 22 {
		// 22 alphanumeric characters ~= 128 bits of entropy, the floor for tokens.
		return cfg, errors.New("SESSION_TOKEN_LENGTH must be >= 22")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateCapacity < 1 {
		return cfg, errors.New("RATE_CAPACITY must be >= 1")
	}
	if cfg.CacheTTL <= 0 {
		return cfg, errors.New("CACHE_TTL must be > 0")
	}
	if cfg.FreshnessWindow <= 0 {
		return cfg, errors.New("FRESHNESS_WINDOW must be > 0")
	}
	if cfg.Provider.Timeout <= 0 {
		return cfg, errors.New("PROVIDER_TIMEOUT must be > 0")
	}
	if cfg.Provider.Limit < 1 {
		return cfg, errors.New("REVIEW_LIMIT must be >= 1")
	}
	if strings.TrimSpace(cfg.Provider.Language) == "" {
		return cfg, errors.New("REVIEW_LANGUAGE must not be empty")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
