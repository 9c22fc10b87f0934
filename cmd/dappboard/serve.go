package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/dappboard/internal/adapter/httpserver"
	"github.com/pscheid92/dappboard/internal/adapter/metrics"
	"github.com/pscheid92/dappboard/internal/adapter/redis"
	"github.com/pscheid92/dappboard/internal/app"
	"github.com/pscheid92/dappboard/internal/catalog"
	"github.com/pscheid92/dappboard/internal/domain"
	"github.com/pscheid92/dappboard/internal/platform/config"
	"github.com/spf13/cobra"
)

const (
	redisConnectTimeout = 10 * time.Second
	shutdownTimeout     = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// catalogBackend is where feed pages come from.
type catalogBackend struct {
	provider     domain.CatalogProvider
	healthChecks []httpserver.HealthCheck
	close        func()
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed, err := catalog.LoadSeed()
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	reg := metrics.NewRegistry()
	clock := clockwork.NewRealClock()

	backend, err := setupCatalogs(ctx, cfg, seed, reg, clock)
	if err != nil {
		slog.Error("Failed to set up catalogs", "error", err)
		return err
	}
	defer backend.close()

	svc := app.NewService(seed, backend.provider, appConfig(cfg), clock,
		app.WithVoteRecorder(metrics.NewVoteMetrics(reg)),
		app.WithFeedObserver(metrics.NewFeedMetrics(reg)),
		app.WithSessionRecorder(metrics.NewSessionMetrics(reg)),
	)

	var wg sync.WaitGroup
	wg.Go(func() { svc.Run(ctx) })

	srv := httpserver.NewServer(cfg, svc, backend.healthChecks, metrics.Handler(reg), metrics.NewHTTPMetrics(reg))

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received, cleaning up...")
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Error("Server shutdown error", "error", shutdownErr)
	}

	// Ends the reaper, which tears down every remaining session.
	stop()
	wg.Wait()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		return err
	}
	slog.Info("Shutdown complete")
	return nil
}

func appConfig(cfg *config.Config) app.Config {
	return app.Config{
		InitialSize:  cfg.FeedInitialSize,
		PageSize:     cfg.FeedPageSize,
		MaxPageSize:  cfg.FeedMaxPageSize,
		FetchLatency: cfg.FeedFetchLatency,
		IdleTimeout:  cfg.SessionIdleTimeout,
	}
}

// setupCatalogs serves the embedded seed from memory unless REDIS_URL is set.
func setupCatalogs(ctx context.Context, cfg *config.Config, seed *catalog.Seed, reg prometheus.Registerer, clock clockwork.Clock) (catalogBackend, error) {
	if !cfg.UsesRedis() {
		slog.Info("Serving catalogs from embedded seed")
		return catalogBackend{provider: seed.MemoryProvider(), close: func() {}}, nil
	}

	redisMetrics := metrics.NewRedisMetrics(reg)
	hook := redis.NewCircuitBreakerHook(redis.WithStateListener(func(_, to circuitbreaker.State) {
		redisMetrics.ObserveBreaker(to, redis.StateValue(to))
	}))

	connectCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	// The metrics hook goes first so it also sees calls rejected by an open breaker.
	client, err := redis.NewClient(connectCtx, cfg.RedisURL, redis.NewMetricsHook(redisMetrics, clock), hook)
	if err != nil {
		return catalogBackend{}, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := redis.NewCatalogStore(client)
	for _, name := range domain.Catalogs() {
		n, err := store.Len(connectCtx, name)
		if err != nil {
			_ = client.Close()
			return catalogBackend{}, fmt.Errorf("failed to inspect catalog %s: %w", name, err)
		}
		if n == 0 {
			slog.Warn("Catalog is empty, run the seed command", "catalog", name)
		}
	}
	slog.Info("Serving catalogs from Redis")

	return catalogBackend{
		provider: store.Provider(),
		healthChecks: []httpserver.HealthCheck{{
			Name: "redis",
			Check: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					return fmt.Errorf("redis ping: %w", err)
				}
				return nil
			},
		}},
		close: func() { _ = client.Close() },
	}, nil
}
