package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/dappboard/internal/adapter/metrics"
	"github.com/pscheid92/dappboard/internal/app"
	"github.com/pscheid92/dappboard/internal/domain"
	"github.com/pscheid92/dappboard/internal/feed"
	"github.com/pscheid92/dappboard/internal/platform/config"
)

type appService interface {
	StartSession(ctx context.Context) (domain.SessionInfo, error)
	EndSession(ctx context.Context, id uuid.UUID) error
	Session(ctx context.Context, id uuid.UUID) (domain.SessionInfo, error)
	ConnectWallet(ctx context.Context, id uuid.UUID, connected bool) (domain.SessionInfo, error)
	CastVote(ctx context.Context, id uuid.UUID, itemID string, dir domain.Direction) (domain.VotableItem, domain.VoteOutcome, error)
	Votes(ctx context.Context, id uuid.UUID, category string) ([]domain.VotableItem, error)
	Rewards(ctx context.Context, id uuid.UUID) (domain.RewardSummary, error)
	Feed(ctx context.Context, id uuid.UUID, name domain.CatalogName, search feed.Search) (app.FeedView, error)
	LoadNextPage(ctx context.Context, id uuid.UUID, name domain.CatalogName, pageSize int) (<-chan error, bool, error)
	NearBottom(ctx context.Context, id uuid.UUID, name domain.CatalogName) error
	ActiveSessions() int
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app            appService
	metricsHandler http.Handler
	httpMetrics    *metrics.HTTPMetrics

	healthChecks []HealthCheck
	startTime    time.Time
}

// NewServer wires the API routes. metricsHandler and httpMetrics may be nil.
func NewServer(cfg *config.Config, app appService, healthChecks []HealthCheck, metricsHandler http.Handler, httpMetrics *metrics.HTTPMetrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler

	srv := &Server{
		echo:           e,
		config:         cfg,
		app:            app,
		metricsHandler: metricsHandler,
		httpMetrics:    httpMetrics,
		healthChecks:   healthChecks,
		startTime:      time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
