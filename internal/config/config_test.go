package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadParsesYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: "9090"
  allowed_origins: ["http://localhost:3000"]
generator:
  provider: OpenRouter
  model: some/model
quiz:
  question_count: 7
  fetch_timeout: 10s
  cache_ttl: 5m
redis:
  addr: localhost:6379
  ttl: 1m
postgres:
  url: postgres://quiz@localhost/quiz
  reuse_window: 1h
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Generator.Provider != ProviderOpenRouter {
		t.Fatalf("expected provider to be normalized, got %q", cfg.Generator.Provider)
	}
	if cfg.Quiz.QuestionCount != 7 {
		t.Fatalf("expected 7 questions, got %d", cfg.Quiz.QuestionCount)
	}
	if got := Duration(cfg.Quiz.FetchTimeout, time.Second); got != 10*time.Second {
		t.Fatalf("unexpected fetch timeout %v", got)
	}
	if got := Duration(cfg.Postgres.ReuseWindow, 0); got != time.Hour {
		t.Fatalf("unexpected reuse window %v", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Generator.Provider != ProviderGemini || cfg.Quiz.QuestionCount != 5 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Log.Mode != "development" {
		t.Fatalf("unexpected log mode %q", cfg.Log.Mode)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "server: [")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDurationFallback(t *testing.T) {
	if got := Duration("", 3*time.Second); got != 3*time.Second {
		t.Fatalf("empty: got %v", got)
	}
	if got := Duration("soon", 3*time.Second); got != 3*time.Second {
		t.Fatalf("malformed: got %v", got)
	}
	if got := Duration("250ms", 0); got != 250*time.Millisecond {
		t.Fatalf("valid: got %v", got)
	}
}

func TestLoadEnvPrefersProcessEnvironment(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "from-process")
	envFile := writeFile(t, ".env", "GEMINI_API_KEY=from-file\n")

	cfg := Config{}
	cfg.applyDefaults()
	if err := cfg.LoadEnv(envFile); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if cfg.APIKey != "from-process" {
		t.Fatalf("expected process env to win, got %q", cfg.APIKey)
	}
}

func TestLoadEnvReadsDotEnv(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	os.Unsetenv("OPENROUTER_API_KEY")
	envFile := writeFile(t, ".env", "OPENROUTER_API_KEY=from-file\n")

	cfg := Config{}
	cfg.Generator.Provider = ProviderOpenRouter
	cfg.applyDefaults()
	if err := cfg.LoadEnv(envFile, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if cfg.APIKey != "from-file" {
		t.Fatalf("expected key from .env, got %q", cfg.APIKey)
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()
	if err := cfg.RequireAPIKey(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}
	cfg.Generator.Provider = ProviderStatic
	if err := cfg.RequireAPIKey(); err != nil {
		t.Fatalf("static provider needs no key: %v", err)
	}
}
