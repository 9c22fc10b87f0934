package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/dappboard/internal/domain"
	"github.com/pscheid92/dappboard/internal/feed"
	apperrors "github.com/pscheid92/dappboard/internal/platform/errors"
)

func (s *Server) registerAPIRoutes() {
	api := s.echo.Group("/api")
	if s.config.APIRateLimit > 0 {
		api.Use(newRateLimiter(s.config.APIRateLimit, s.config.APIRateBurst))
	}

	api.POST("/sessions", s.handleStartSession)
	api.DELETE("/sessions/:id", s.handleEndSession)
	api.GET("/sessions/:id", s.handleGetSession)
	api.PUT("/sessions/:id/wallet", s.handleConnectWallet)

	api.GET("/sessions/:id/votes", s.handleListVotes)
	api.POST("/sessions/:id/votes/:item", s.handleCastVote)
	api.GET("/sessions/:id/rewards", s.handleRewards)

	api.GET("/sessions/:id/feeds/:catalog", s.handleFeed)
	api.POST("/sessions/:id/feeds/:catalog/next", s.handleLoadNextPage)
	api.POST("/sessions/:id/feeds/:catalog/scroll", s.handleNearBottom)
}

type walletRequest struct {
	Connected bool `json:"connected"`
}

type voteRequest struct {
	Direction string `json:"direction"`
}

type voteResponse struct {
	Item       domain.VotableItem `json:"item"`
	Outcome    string             `json:"outcome"`
	TotalVotes int                `json:"totalVotes"`
}

type loadResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleStartSession(c echo.Context) error {
	info, err := s.app.StartSession(c.Request().Context())
	if err != nil {
		return mapDomainError(err)
	}
	return writeJSON(c, http.StatusCreated, info)
}

func (s *Server) handleEndSession(c echo.Context) error {
	id, err := sessionParam(c)
	if err != nil {
		return err
	}
	if err := s.app.EndSession(c.Request().Context(), id); err != nil {
		return mapDomainError(err)
	}
	if err := c.NoContent(http.StatusNoContent); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}
	return nil
}

func (s *Server) handleGetSession(c echo.Context) error {
	id, err := sessionParam(c)
	if err != nil {
		return err
	}
	info, err := s.app.Session(c.Request().Context(), id)
	if err != nil {
		return mapDomainError(err)
	}
	return writeJSON(c, http.StatusOK, info)
}

func (s *Server) handleConnectWallet(c echo.Context) error {
	id, err := sessionParam(c)
	if err != nil {
		return err
	}

	var req walletRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	info, err := s.app.ConnectWallet(c.Request().Context(), id, req.Connected)
	if err != nil {
		return mapDomainError(err)
	}
	return writeJSON(c, http.StatusOK, info)
}

func (s *Server) handleListVotes(c echo.Context) error {
	id, err := sessionParam(c)
	if err != nil {
		return err
	}
	items, err := s.app.Votes(c.Request().Context(), id, c.QueryParam("category"))
	if err != nil {
		return mapDomainError(err)
	}
	return writeJSON(c, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCastVote(c echo.Context) error {
	id, err := sessionParam(c)
	if err != nil {
		return err
	}

	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	dir, err := domain.ParseDirection(req.Direction)
	if err != nil {
		return apperrors.ValidationError("direction must be up or down").WithContext("direction", req.Direction)
	}

	item, outcome, err := s.app.CastVote(c.Request().Context(), id, c.Param("item"), dir)
	if err != nil {
		return mapDomainError(err)
	}
	return writeJSON(c, http.StatusOK, voteResponse{
		Item:       item,
		Outcome:    outcome.String(),
		TotalVotes: item.TotalVotes(),
	})
}

func (s *Server) handleRewards(c echo.Context) error {
	id, err := sessionParam(c)
	if err != nil {
		return err
	}
	summary, err := s.app.Rewards(c.Request().Context(), id)
	if err != nil {
		return mapDomainError(err)
	}
	return writeJSON(c, http.StatusOK, summary)
}

func (s *Server) handleFeed(c echo.Context) error {
	id, name, err := feedParams(c)
	if err != nil {
		return err
	}

	search := feed.Search{Query: c.QueryParam("q"), Category: c.QueryParam("category")}
	view, err := s.app.Feed(c.Request().Context(), id, name, search)
	if err != nil {
		return mapDomainError(err)
	}
	return writeJSON(c, http.StatusOK, view)
}

// handleLoadNextPage answers 202 when a load was started and 200 when the guard absorbed
// the request. With wait=true it blocks until the page is applied and returns the feed.
func (s *Server) handleLoadNextPage(c echo.Context) error {
	id, name, err := feedParams(c)
	if err != nil {
		return err
	}

	pageSize := 0
	if raw := c.QueryParam("page_size"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 {
			return apperrors.ValidationError("page_size must be a positive integer").WithContext("page_size", raw)
		}
	}

	ctx := c.Request().Context()
	done, started, err := s.app.LoadNextPage(ctx, id, name, pageSize)
	if err != nil {
		return mapDomainError(err)
	}
	if !started {
		return writeJSON(c, http.StatusOK, loadResponse{Status: "unchanged"})
	}
	if c.QueryParam("wait") != "true" {
		return writeJSON(c, http.StatusAccepted, loadResponse{Status: "loading"})
	}

	select {
	case err := <-done:
		if err != nil {
			return mapDomainError(err)
		}
	case <-ctx.Done():
		// The load keeps running for the session; the client polls the feed for it.
		return writeJSON(c, http.StatusAccepted, loadResponse{Status: "loading"})
	}

	view, err := s.app.Feed(ctx, id, name, feed.Search{})
	if err != nil {
		return mapDomainError(err)
	}
	return writeJSON(c, http.StatusOK, view)
}

func (s *Server) handleNearBottom(c echo.Context) error {
	id, name, err := feedParams(c)
	if err != nil {
		return err
	}
	if err := s.app.NearBottom(c.Request().Context(), id, name); err != nil {
		return mapDomainError(err)
	}
	return writeJSON(c, http.StatusAccepted, loadResponse{Status: "signaled"})
}

func sessionParam(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid session ID").WithContext("session_id", raw)
	}
	return id, nil
}

func feedParams(c echo.Context) (uuid.UUID, domain.CatalogName, error) {
	id, err := sessionParam(c)
	if err != nil {
		return uuid.Nil, "", err
	}
	raw := c.Param("catalog")
	name, err := domain.ParseCatalogName(raw)
	if err != nil {
		return uuid.Nil, "", apperrors.NotFoundError("catalog not found", err).WithContext("catalog", raw)
	}
	return id, name, nil
}

// mapDomainError translates engine and service sentinels into structured errors.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return apperrors.NotFoundError("session not found", err)
	case errors.Is(err, domain.ErrItemNotFound):
		return apperrors.NotFoundError("item not found", err)
	case errors.Is(err, domain.ErrCatalogNotFound):
		return apperrors.NotFoundError("catalog not found", err)
	case errors.Is(err, domain.ErrInvalidDirection):
		return apperrors.ValidationError("direction must be up or down")
	case errors.Is(err, domain.ErrInvalidPageSize):
		return apperrors.ValidationError(err.Error())
	case errors.Is(err, feed.ErrClosed):
		return apperrors.NotFoundError("session ended before the page was loaded", err)
	case errors.Is(err, domain.ErrFetchFailed):
		return apperrors.ExternalError("catalog unavailable, try again", err)
	default:
		return apperrors.InternalError("internal server error", err)
	}
}

func writeJSON(c echo.Context, status int, body any) error {
	if err := c.JSON(status, body); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
