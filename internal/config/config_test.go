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
	if cfg.CollaboratorTimeout != 10*time.Second {
		t.Errorf("expected default collaborator timeout 10s, got %s", cfg.CollaboratorTimeout)
	}
	if cfg.DirectoryBaseURL != "" {
		t.Errorf("expected empty directory base URL, got %s", cfg.DirectoryBaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("COLLABORATOR_TIMEOUT", "3s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.CollaboratorTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.CollaboratorTimeout)
	}
	if !cfg.RedisTLS {
		t.Error("expected RedisTLS true")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("COLLABORATOR_TIMEOUT", "not-a-duration")

	cfg := Load()
	if cfg.CollaboratorTimeout != 10*time.Second {
		t.Errorf("expected fallback 10s, got %s", cfg.CollaboratorTimeout)
	}
}
