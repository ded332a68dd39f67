package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"topic-quiz-service/internal/app"
	"topic-quiz-service/internal/config"
	"topic-quiz-service/internal/infra/memory"
	infraredis "topic-quiz-service/internal/infra/redis"
	"topic-quiz-service/internal/logger"
	transport "topic-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, envFile, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server (browser client and websocket sessions)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *envFile, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, envFile, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath, envFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	d, err := buildDeps(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		log.Sync()
		return err
	}
	defer d.Close()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var (
		store    app.SessionRepository
		counters liveCounter
	)
	if d.redis != nil {
		redisStore := infraredis.NewSessionStore(d.redis, config.Duration(cfg.Redis.TTL, 10*time.Minute))
		store, counters = redisStore, redisStore
	} else {
		store = memory.NewSessionStore()
	}
	service := app.NewService(store, d.source, d.controllerOptions())

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(service, transport.RouterOptions{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         log,
		}),
		ReadHeaderTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting quiz service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if counters != nil {
		g.Go(func() error {
			reportLiveSessions(gctx, counters, time.Minute, log)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type liveCounter interface {
	Live(ctx context.Context) (int, error)
}

// reportLiveSessions logs the number of sessions open across every instance sharing Redis until ctx ends.
func reportLiveSessions(ctx context.Context, counter liveCounter, every time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			live, err := counter.Live(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Warn("counting live sessions failed", "error", err)
				}
				continue
			}
			log.Info("live sessions", "count", live)
		}
	}
}
