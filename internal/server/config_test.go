package server

import (
	"testing"
	"time"
)

// TestDefaultConfig verifies the defaults applied when no configuration is
// provided.
func TestDefaultConfig(t *testing.T) {
	SetConfig(nil)
	defer SetConfig(nil)

	cfg := currentConfig()
	if cfg.Port != ":8080" {
		t.Errorf("Port = %q, want :8080", cfg.Port)
	}
	if cfg.MaxMessageSize != 4096 {
		t.Errorf("MaxMessageSize = %d, want 4096", cfg.MaxMessageSize)
	}
	if cfg.RateLimit.Burst != 20 || cfg.RateLimit.RefillInterval != time.Second {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if !allowAllOrigins {
		t.Error("Default config should allow all origins")
	}
}

// TestSetConfigSanitizesInvalidValues verifies zero and negative settings
// fall back to safe defaults.
func TestSetConfigSanitizesInvalidValues(t *testing.T) {
	defer SetConfig(nil)

	SetConfig(&Config{
		Port:           "",
		MaxMessageSize: -1,
		RateLimit: RateLimitConfig{
			Burst:          0,
			RefillInterval: -time.Second,
		},
	})

	cfg := currentConfig()
	if cfg.Port != ":8080" {
		t.Errorf("Port = %q, want sanitized :8080", cfg.Port)
	}
	if cfg.MaxMessageSize != 4096 {
		t.Errorf("MaxMessageSize = %d, want sanitized 4096", cfg.MaxMessageSize)
	}
	if cfg.RateLimit.Burst != 20 || cfg.RateLimit.RefillInterval != time.Second {
		t.Errorf("RateLimit = %+v, want sanitized defaults", cfg.RateLimit)
	}
}

// TestNewConfigFromEnv verifies environment overrides are applied and bad
// values are ignored.
func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9090")
	t.Setenv("ALLOWED_ORIGINS", "https://game.example.com, https://staging.example.com")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("RATE_LIMIT_BURST", "nonsense")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2")

	cfg := NewConfigFromEnv()
	if cfg.Port != ":9090" {
		t.Errorf("Port = %q, want :9090", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://game.example.com" {
		t.Errorf("AllowedOrigins = %+v", cfg.AllowedOrigins)
	}
	if cfg.MaxMessageSize != 1024 {
		t.Errorf("MaxMessageSize = %d, want 1024", cfg.MaxMessageSize)
	}
	if cfg.RateLimit.Burst != 20 {
		t.Errorf("Burst = %d, want default kept on bad value", cfg.RateLimit.Burst)
	}
	if cfg.RateLimit.RefillInterval != 2*time.Second {
		t.Errorf("RefillInterval = %v, want 2s", cfg.RateLimit.RefillInterval)
	}
}

// TestRateLimiterThrottles verifies the token bucket blocks once its burst is
// spent and refills over time.
func TestRateLimiterThrottles(t *testing.T) {
	limiter := newRateLimiter(2, 100*time.Millisecond)

	if !limiter.allow() || !limiter.allow() {
		t.Fatal("Burst allowance rejected")
	}
	if limiter.allow() {
		t.Error("Third immediate message allowed past burst")
	}

	time.Sleep(120 * time.Millisecond)
	if !limiter.allow() {
		t.Error("Message rejected after refill interval")
	}
}
