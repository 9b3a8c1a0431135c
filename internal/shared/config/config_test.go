package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsAndSecretFallback(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "prod")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SUPABASE_JWT_SECRET", "supabase-secret")
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")

	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.JWTSecret != "supabase-secret" {
		t.Fatalf("expected fallback secret, got %q", cfg.JWTSecret)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Fatalf("unexpected model %q", cfg.EmbeddingModel)
	}
	if cfg.RateLimitRPS != 5 {
		t.Fatalf("expected default rps on bad input, got %v", cfg.RateLimitRPS)
	}
	if cfg.JWTAudience != "authenticated" {
		t.Fatalf("unexpected audience %q", cfg.JWTAudience)
	}
}

func TestLoadReadsDotEnvWithoutOverridingProcessEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := "PORT=9999\nEMBEDDING_MODEL=from-file\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("EMBEDDING_MODEL", "")
	os.Unsetenv("EMBEDDING_MODEL")

	cfg := Load()
	if cfg.Port != "7000" {
		t.Fatalf("expected process env to win, got %q", cfg.Port)
	}
	if cfg.EmbeddingModel != "from-file" {
		t.Fatalf("expected value from .env, got %q", cfg.EmbeddingModel)
	}
}

func TestValidateListsMissingKeys(t *testing.T) {
	err := Config{Env: "production"}.Validate()
	if !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
	for _, key := range []string{"JWT_SECRET", "OPENAI_API_KEY", "DATABASE_URL"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %q", key, err.Error())
		}
	}

	devErr := Config{Env: "dev", JWTSecret: "s", OpenAIAPIKey: "k"}.Validate()
	if devErr != nil {
		t.Fatalf("expected dev config without database to validate, got %v", devErr)
	}
}
