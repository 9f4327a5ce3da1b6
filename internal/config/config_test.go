package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default HTTP addr, got %s", cfg.HTTPAddr)
	}
	if cfg.BackendBaseURL != "https://api.activityhub.app/v1" {
		t.Fatalf("unexpected backend base URL %s", cfg.BackendBaseURL)
	}
	if cfg.BackendTimeout != 8*time.Second {
		t.Fatalf("expected 8s backend timeout, got %s", cfg.BackendTimeout)
	}
	if cfg.BackendMaxRetries != 0 {
		t.Fatalf("expected retries disabled by default, got %d", cfg.BackendMaxRetries)
	}
	if cfg.BackendCircuitEnabled {
		t.Fatalf("expected circuit breaker disabled by default")
	}
	if cfg.DemoUserID != "demo-user" {
		t.Fatalf("unexpected demo user id %s", cfg.DemoUserID)
	}
	if cfg.SweepInterval != time.Minute {
		t.Fatalf("expected 60s sweep interval, got %s", cfg.SweepInterval)
	}
	if !cfg.CacheEnabled || cfg.CacheTTL != time.Minute {
		t.Fatalf("unexpected cache config enabled=%t ttl=%s", cfg.CacheEnabled, cfg.CacheTTL)
	}
}

func TestLoad_BackendOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("BACKEND_BASE_URL", "https://staging.activityhub.app/v1")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("BACKEND_MAX_RETRIES", "2")
	t.Setenv("BACKEND_CIRCUIT_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BackendBaseURL != "https://staging.activityhub.app/v1" {
		t.Fatalf("unexpected backend base URL %s", cfg.BackendBaseURL)
	}
	if cfg.BackendTimeout != 3*time.Second {
		t.Fatalf("unexpected backend timeout %s", cfg.BackendTimeout)
	}
	if cfg.BackendMaxRetries != 2 {
		t.Fatalf("unexpected max retries %d", cfg.BackendMaxRetries)
	}
	if !cfg.BackendCircuitEnabled {
		t.Fatalf("expected circuit breaker enabled")
	}
}

func TestLoad_BackendTimeoutValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BACKEND_TIMEOUT", "0s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-positive BACKEND_TIMEOUT")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PyroscopeRequiresServerWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without server address")
	}
}

func TestLoad_SnapshotPathRequired(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SNAPSHOT_DB_PATH", "   ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SnapshotDBPath != "activityhub.db" {
		t.Fatalf("blank path should fall back to default, got %q", cfg.SnapshotDBPath)
	}
}
