package config

import (
	"strings"
	"testing"
	"time"
)

// setRequired sets the variables without which Load refuses to start.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("MODERATOR_ID", "999")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q", cfg.GinMode)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.DBPath != "memorial.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.UpdateTTL != 24*time.Hour {
		t.Errorf("UpdateTTL = %v", cfg.UpdateTTL)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Errorf("rate limit = %v/%d", cfg.RateRPS, cfg.RateBurst)
	}
}

func TestWebhookSecretDefaultsToToken(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bot.WebhookSecret != "123:abc" {
		t.Errorf("WebhookSecret = %q, want the token", cfg.Bot.WebhookSecret)
	}

	t.Setenv("WEBHOOK_SECRET", "other")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bot.WebhookSecret != "other" {
		t.Errorf("WebhookSecret = %q, want other", cfg.Bot.WebhookSecret)
	}

	// A blank secret is no secret at all; the token still wins.
	t.Setenv("WEBHOOK_SECRET", "   ")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bot.WebhookSecret != cfg.Bot.Token {
		t.Errorf("WebhookSecret = %q, want the token fallback", cfg.Bot.WebhookSecret)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "warning") // normalized to warn
	t.Setenv("GIN_MODE", "bogus")    // normalized to release
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("UPDATE_TTL", "1h")
	t.Setenv("RATE_RPS", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q", cfg.GinMode)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.UpdateTTL != time.Hour {
		t.Errorf("UpdateTTL = %v", cfg.UpdateTTL)
	}
	if cfg.RateRPS != 2.5 {
		t.Errorf("RateRPS = %v", cfg.RateRPS)
	}
}

func TestLoadRejectsMissingToken(t *testing.T) {
	t.Setenv("MODERATOR_ID", "999")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "BOT_TOKEN") {
		t.Fatalf("expected BOT_TOKEN error, got %v", err)
	}
}

func TestLoadRejectsNonNumericModerator(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("MODERATOR_ID", "not-a-number")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "MODERATOR_ID") {
		t.Fatalf("expected MODERATOR_ID error, got %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"zero burst", "RATE_BURST", "0"},
		{"negative rps", "RATE_RPS", "-1"},
		{"zero update ttl", "UPDATE_TTL", "0s"},
		{"bad sample ratio", "OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestMustLoadPanicsOnInvalid(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("MODERATOR_ID", "")

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustLoad()
}
