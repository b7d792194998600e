package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "TOKEN_TTL", "TZ_LOCATION", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_ENABLED", "DEFAULT_TAX_RATE", "TRUSTED_PROXIES"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "8081" {
		t.Errorf("port: got %q", cfg.Port)
	}
	if cfg.TokenTTL != 8*time.Hour {
		t.Errorf("token ttl: got %s", cfg.TokenTTL)
	}
	if cfg.DefaultTaxRate != "0.0825" {
		t.Errorf("tax rate: got %q", cfg.DefaultTaxRate)
	}
	if !cfg.RateLimitEnabled {
		t.Error("rate limit should default to enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 1 {
		t.Errorf("cors origins: got %v", cfg.CORSAllowedOrigins)
	}
	if len(cfg.TrustedProxies) != 0 {
		t.Errorf("trusted proxies should default to none, got %v", cfg.TrustedProxies)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("TZ_LOCATION", "UTC")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("port: got %q", cfg.Port)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("token ttl: got %s", cfg.TokenTTL)
	}
	if cfg.RateLimitEnabled {
		t.Error("rate limit should be disabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("cors origins: got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Location != time.UTC {
		t.Errorf("location: got %v", cfg.Location)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("redis db: got %d", cfg.RedisDB)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.0/8" {
		t.Errorf("trusted proxies: got %v", cfg.TrustedProxies)
	}
}

func TestLoad_BadTimeZoneFallsBackToUTC(t *testing.T) {
	t.Setenv("TZ_LOCATION", "Mars/Olympus_Mons")
	if cfg := Load(); cfg.Location != time.UTC {
		t.Errorf("location: got %v", cfg.Location)
	}
}
