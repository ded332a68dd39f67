package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderStatic     = "static"
)

var ErrMissingAPIKey = errors.New("missing API key: set API_KEY or the provider specific variable")

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
	Generator struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"generator"`
	Quiz struct {
		QuestionCount int    `yaml:"question_count"`
		FetchTimeout  string `yaml:"fetch_timeout"`
		CacheTTL      string `yaml:"cache_ttl"`
	} `yaml:"quiz"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL         string `yaml:"url"`
		ReuseWindow string `yaml:"reuse_window"`
	} `yaml:"postgres"`

	// APIKey never comes from the YAML file.
	APIKey string `yaml:"-"`
}

// Load reads YAML config from path and fills defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "development"
	}
	c.Generator.Provider = strings.ToLower(strings.TrimSpace(c.Generator.Provider))
	if c.Generator.Provider == "" {
		c.Generator.Provider = ProviderGemini
	}
	if c.Quiz.QuestionCount <= 0 {
		c.Quiz.QuestionCount = 5
	}
}

// LoadEnv loads .env files (when present) without overriding variables already set,
// then resolves the provider credential.
func (c *Config) LoadEnv(files ...string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return fmt.Errorf("load env: %w", err)
		}
	}
	c.APIKey = c.lookupAPIKey()
	return nil
}

func (c *Config) lookupAPIKey() string {
	names := []string{"API_KEY"}
	switch c.Generator.Provider {
	case ProviderGemini:
		names = append(names, "GEMINI_API_KEY")
	case ProviderOpenRouter:
		names = append(names, "OPENROUTER_API_KEY")
	}
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// RequireAPIKey fails when the configured provider needs a credential and none was found.
func (c Config) RequireAPIKey() error {
	if c.Generator.Provider == ProviderStatic || c.APIKey != "" {
		return nil
	}
	return fmt.Errorf("%w (provider %s)", ErrMissingAPIKey, c.Generator.Provider)
}

// Duration parses a duration string or returns the fallback if empty or malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
