package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.OutboxBatchSize != 25 {
		t.Errorf("expected default outbox batch size 25, got %d", cfg.OutboxBatchSize)
	}
	if cfg.OutboxPollInterval != 2*time.Second {
		t.Errorf("expected default outbox poll interval 2s, got %s", cfg.OutboxPollInterval)
	}
	if cfg.GeminiModelID != "gemini-2.5-flash" {
		t.Errorf("expected default gemini model, got %s", cfg.GeminiModelID)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOW_FAKE_PAYMENTS", "true")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if !cfg.AllowFakePayments {
		t.Error("expected fake payments enabled")
	}
	if cfg.OutboxPollInterval != 500*time.Millisecond {
		t.Errorf("expected 500ms poll interval, got %s", cfg.OutboxPollInterval)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestGetEnvAsIntInvalid(t *testing.T) {
	t.Setenv("OUTBOX_BATCH_SIZE", "not-a-number")
	cfg := Load()
	if cfg.OutboxBatchSize != 25 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.OutboxBatchSize)
	}
}
