package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q, want /api/v1", cfg.APIBasePath)
	}
	if cfg.RateRPS != 1.0 || cfg.RateCapacity != 10 {
		t.Errorf("rate defaults = (%v, %v), want (1.0, 10)", cfg.RateRPS, cfg.RateCapacity)
	}
	if cfg.RateFailOpen {
		t.Error("RateFailOpen should default to false (fail closed)")
	}
	if cfg.Session.Duration != 7*24*time.Hour {
		t.Errorf("Session.Duration = %v, want 168h", cfg.Session.Duration)
	}
	if cfg.Session.TokenLength != 32 {
		t.Errorf("Session.TokenLength = %v, want 32", cfg.Session.TokenLength)
	}
	if cfg.FreshnessWindow != 7*24*time.Hour {
		t.Errorf("FreshnessWindow = %v, want 168h", cfg.FreshnessWindow)
	}
	if cfg.Provider.Limit != 30 || cfg.Provider.Language != "en" {
		t.Errorf("provider defaults = (%v, %q), want (30, en)", cfg.Provider.Limit, cfg.Provider.Language)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_RPS", "2.5")
	t.Setenv("RATE_CAPACITY", "5")
	t.Setenv("RATE_FAIL_OPEN", "true")
	t.Setenv("SESSION_DURATION", "24h")
	t.Setenv("FRESHNESS_WINDOW", "1h")
	t.Setenv("API_BASE_PATH", "api/v2/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.RateRPS != 2.5 || cfg.RateCapacity != 5 {
		t.Errorf("rate = (%v, %v)", cfg.RateRPS, cfg.RateCapacity)
	}
	if !cfg.RateFailOpen {
		t.Error("RateFailOpen should be true")
	}
	if cfg.Session.Duration != 24*time.Hour {
		t.Errorf("Session.Duration = %v", cfg.Session.Duration)
	}
	if cfg.FreshnessWindow != time.Hour {
		t.Errorf("FreshnessWindow = %v", cfg.FreshnessWindow)
	}
	// Base path is normalized: leading slash added, trailing stripped.
	if cfg.APIBasePath != "/api/v2" {
		t.Errorf("APIBasePath = %q, want /api/v2", cfg.APIBasePath)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"negative rps", "RATE_RPS", "-1"},
		{"zero capacity", "RATE_CAPACITY", "0"},
		{"short token", "SESSION_TOKEN_LENGTH", "8"},
		{"zero freshness", "FRESHNESS_WINDOW", "0s"},
		{"zero cache ttl", "CACHE_TTL", "0s"},
		{"bad sample ratio", "OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":         "/",
		"/":        "/",
		"api":      "/api",
		"/api/":    "/api",
		"/api/v1":  "/api/v1",
		"/api/v1/": "/api/v1",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
