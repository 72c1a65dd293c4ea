package config

import (
	"os"
	"testing"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	original, existed := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
	t.Cleanup(func() {
		if !existed {
			_ = os.Unsetenv(key)
			return
		}
		_ = os.Setenv(key, original)
	})
}

func TestNewDefaultsToDevelopmentWithGermanPrimary(t *testing.T) {
	unsetEnv(t, "ENVIRONMENT")
	unsetEnv(t, "PRIMARY_LANGUAGE")
	unsetEnv(t, "SECONDARY_LANGUAGE")

	cfg := New()
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development environment, got %q", cfg.Environment)
	}
	if cfg.PrimaryLanguage != "de" || cfg.SecondaryLanguage != "en" {
		t.Fatalf("unexpected language pair %q/%q", cfg.PrimaryLanguage, cfg.SecondaryLanguage)
	}
}

func TestNewNormalisesEnvironmentCase(t *testing.T) {
	t.Setenv("ENVIRONMENT", "Production")

	cfg := New()
	if !cfg.IsProduction() {
		t.Fatalf("expected production environment, got %q", cfg.Environment)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production not to count as development")
	}
}

func TestDSNTargetsRequestedDatabase(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_NAME", "site")
	unsetEnv(t, "DB_SSLMODE")

	cfg := New()
	if cfg.DatabaseURL != "postgres://u:p@db:5433/site?sslmode=disable" {
		t.Fatalf("unexpected database url %q", cfg.DatabaseURL)
	}
	if got := cfg.DSN("postgres"); got != "postgres://u:p@db:5433/postgres?sslmode=disable" {
		t.Fatalf("unexpected maintenance dsn %q", got)
	}
}

func TestInvalidIntegerFallsBackToDefault(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "lots")

	cfg := New()
	if cfg.RateLimitRequests != 100 {
		t.Fatalf("expected default rate limit, got %d", cfg.RateLimitRequests)
	}
}
