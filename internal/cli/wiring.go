package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"topic-quiz-service/internal/app"
	"topic-quiz-service/internal/config"
	"topic-quiz-service/internal/infra/gemini"
	"topic-quiz-service/internal/infra/memory"
	"topic-quiz-service/internal/infra/openrouter"
	pgarchive "topic-quiz-service/internal/infra/postgres"
	infraredis "topic-quiz-service/internal/infra/redis"
	"topic-quiz-service/internal/logger"
)

// deps holds everything built from config that commands share.
type deps struct {
	cfg    config.Config
	log    *logger.Logger
	redis  *redis.Client
	pool   *pgxpool.Pool
	source app.QuestionSource
}

func (d *deps) controllerOptions() app.ControllerOptions {
	return app.ControllerOptions{
		QuestionCount: d.cfg.Quiz.QuestionCount,
		FetchTimeout:  config.Duration(d.cfg.Quiz.FetchTimeout, 45*time.Second),
		Logger:        d.log,
	}
}

func (d *deps) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
	d.log.Sync()
}

// loadConfig reads the YAML file and the provider credential.
func loadConfig(configPath, envFile string) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.LoadEnv(envFile); err != nil {
		return cfg, err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildDeps connects the optional stores and composes the question source:
// provider, then the Postgres archive, then a Redis or in-process cache.
func buildDeps(ctx context.Context, cfg config.Config, log *logger.Logger) (*deps, error) {
	d := &deps{cfg: cfg, log: log}

	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := d.redis.Ping(ctx).Err(); err != nil {
			d.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		d.pool = pool
	}

	provider, err := newProvider(cfg)
	if err != nil {
		d.Close()
		return nil, err
	}
	log.Info("question provider configured", "provider", cfg.Generator.Provider, "model", cfg.Generator.Model)

	var source app.QuestionSource = provider
	if d.pool != nil {
		source = pgarchive.NewArchive(d.pool, source, config.Duration(cfg.Postgres.ReuseWindow, 0), log)
	}
	if cacheTTL := config.Duration(cfg.Quiz.CacheTTL, 0); cacheTTL > 0 {
		if d.redis != nil {
			source = infraredis.NewCachedSource(d.redis, source, cacheTTL, log)
		} else {
			source = memory.NewCachedSource(source, cacheTTL)
		}
	}
	d.source = source
	return d, nil
}

func newProvider(cfg config.Config) (app.QuestionSource, error) {
	httpClient := &http.Client{}
	switch cfg.Generator.Provider {
	case config.ProviderGemini:
		return gemini.NewClient(cfg.APIKey, cfg.Generator.Model, cfg.Generator.BaseURL, cfg.Quiz.QuestionCount, httpClient)
	case config.ProviderOpenRouter:
		return openrouter.NewClient(cfg.Generator.Model, cfg.APIKey, cfg.Generator.BaseURL, cfg.Quiz.QuestionCount, httpClient)
	case config.ProviderStatic:
		return memory.NewStaticSource(memory.DemoSets()), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Generator.Provider)
	}
}
