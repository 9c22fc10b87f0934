package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/dappboard/internal/app"
	"github.com/pscheid92/dappboard/internal/domain"
	"github.com/pscheid92/dappboard/internal/feed"
	"github.com/pscheid92/dappboard/internal/platform/config"
)

// --- Mock implementations ---

type mockAppService struct {
	startSessionFn   func(ctx context.Context) (domain.SessionInfo, error)
	endSessionFn     func(ctx context.Context, id uuid.UUID) error
	sessionFn        func(ctx context.Context, id uuid.UUID) (domain.SessionInfo, error)
	connectWalletFn  func(ctx context.Context, id uuid.UUID, connected bool) (domain.SessionInfo, error)
	castVoteFn       func(ctx context.Context, id uuid.UUID, itemID string, dir domain.Direction) (domain.VotableItem, domain.VoteOutcome, error)
	votesFn          func(ctx context.Context, id uuid.UUID, category string) ([]domain.VotableItem, error)
	rewardsFn        func(ctx context.Context, id uuid.UUID) (domain.RewardSummary, error)
	feedFn           func(ctx context.Context, id uuid.UUID, name domain.CatalogName, search feed.Search) (app.FeedView, error)
	loadNextPageFn   func(ctx context.Context, id uuid.UUID, name domain.CatalogName, pageSize int) (<-chan error, bool, error)
	nearBottomFn     func(ctx context.Context, id uuid.UUID, name domain.CatalogName) error
	activeSessionsFn func() int
}

func (m *mockAppService) StartSession(ctx context.Context) (domain.SessionInfo, error) {
	if m.startSessionFn != nil {
		return m.startSessionFn(ctx)
	}
	return domain.SessionInfo{ID: uuid.New(), StartedAt: time.Now()}, nil
}

func (m *mockAppService) EndSession(ctx context.Context, id uuid.UUID) error {
	if m.endSessionFn != nil {
		return m.endSessionFn(ctx, id)
	}
	return nil
}

func (m *mockAppService) Session(ctx context.Context, id uuid.UUID) (domain.SessionInfo, error) {
	if m.sessionFn != nil {
		return m.sessionFn(ctx, id)
	}
	return domain.SessionInfo{}, domain.ErrSessionNotFound
}

func (m *mockAppService) ConnectWallet(ctx context.Context, id uuid.UUID, connected bool) (domain.SessionInfo, error) {
	if m.connectWalletFn != nil {
		return m.connectWalletFn(ctx, id, connected)
	}
	return domain.SessionInfo{ID: id, WalletConnected: connected}, nil
}

func (m *mockAppService) CastVote(ctx context.Context, id uuid.UUID, itemID string, dir domain.Direction) (domain.VotableItem, domain.VoteOutcome, error) {
	if m.castVoteFn != nil {
		return m.castVoteFn(ctx, id, itemID, dir)
	}
	return domain.VotableItem{}, 0, errors.New("not implemented")
}

func (m *mockAppService) Votes(ctx context.Context, id uuid.UUID, category string) ([]domain.VotableItem, error) {
	if m.votesFn != nil {
		return m.votesFn(ctx, id, category)
	}
	return nil, nil
}

func (m *mockAppService) Rewards(ctx context.Context, id uuid.UUID) (domain.RewardSummary, error) {
	if m.rewardsFn != nil {
		return m.rewardsFn(ctx, id)
	}
	return domain.RewardSummary{}, nil
}

func (m *mockAppService) Feed(ctx context.Context, id uuid.UUID, name domain.CatalogName, search feed.Search) (app.FeedView, error) {
	if m.feedFn != nil {
		return m.feedFn(ctx, id, name, search)
	}
	return app.FeedView{}, nil
}

func (m *mockAppService) LoadNextPage(ctx context.Context, id uuid.UUID, name domain.CatalogName, pageSize int) (<-chan error, bool, error) {
	if m.loadNextPageFn != nil {
		return m.loadNextPageFn(ctx, id, name, pageSize)
	}
	return nil, false, nil
}

func (m *mockAppService) NearBottom(ctx context.Context, id uuid.UUID, name domain.CatalogName) error {
	if m.nearBottomFn != nil {
		return m.nearBottomFn(ctx, id, name)
	}
	return nil
}

func (m *mockAppService) ActiveSessions() int {
	if m.activeSessionsFn != nil {
		return m.activeSessionsFn()
	}
	return 0
}

// --- Test helpers ---

func testConfig() *config.Config {
	return &config.Config{Port: "0", APIRateLimit: 1000, APIRateBurst: 1000}
}

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := &Server{
		echo:      echo.New(),
		config:    testConfig(),
		app:       app,
		startTime: time.Now(),
	}
	srv.echo.HTTPErrorHandler = httpErrorHandler

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withConfig(cfg *config.Config) func(*Server) {
	return func(s *Server) {
		s.config = cfg
	}
}

func withMetricsHandler(h http.Handler) func(*Server) {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}

// serve routes a request through the full middleware chain.
func serve(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}
