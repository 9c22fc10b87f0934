package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/dappboard/internal/ballot"
	"github.com/pscheid92/dappboard/internal/domain"
	"github.com/pscheid92/dappboard/internal/feed"
)

// Config sizes the feeds and timers of every session.
type Config struct {
	InitialSize  int
	PageSize     int
	MaxPageSize  int
	FetchLatency time.Duration
	IdleTimeout  time.Duration
}

// VoteRecorder observes ballots.
type VoteRecorder interface {
	ObserveCast(outcome domain.VoteOutcome, dir domain.Direction)
	ObserveRejected(reason string)
}

// FeedObserver hands out a paginator observer per catalog.
type FeedObserver interface {
	Observer(name domain.CatalogName) func(feed.LoadEvent)
}

// SessionRecorder observes the session lifecycle.
type SessionRecorder interface {
	SessionStarted()
	SessionEnded(reason string)
}

type Option func(*Service)

func WithVoteRecorder(r VoteRecorder) Option {
	return func(s *Service) { s.votesRec = r }
}

func WithFeedObserver(o FeedObserver) Option {
	return func(s *Service) { s.feedObs = o }
}

func WithSessionRecorder(r SessionRecorder) Option {
	return func(s *Service) { s.sessionRec = r }
}

// Service is the application layer. It is the only component that references both
// engines, and it orchestrates every viewer use case.
type Service struct {
	seed     domain.VoteSeedSource
	catalogs domain.CatalogProvider
	cfg      Config
	clock    clockwork.Clock

	votesRec   VoteRecorder
	feedObs    FeedObserver
	sessionRec SessionRecorder

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

func NewService(seed domain.VoteSeedSource, catalogs domain.CatalogProvider, cfg Config, clock clockwork.Clock, opts ...Option) *Service {
	s := &Service{
		seed:       seed,
		catalogs:   catalogs,
		cfg:        cfg,
		clock:      clock,
		votesRec:   nopRecorder{},
		sessionRec: nopRecorder{},
		sessions:   make(map[uuid.UUID]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession seeds a fresh aggregator and opens one paginator per catalog.
// Nothing carries over from earlier sessions.
func (s *Service) StartSession(ctx context.Context) (domain.SessionInfo, error) {
	ballots, err := ballot.NewAggregator(s.seed.VoteItems())
	if err != nil {
		return domain.SessionInfo{}, fmt.Errorf("failed to seed ballots: %w", err)
	}

	now := s.clock.Now()
	sessCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sess := &session{
		id:        uuid.New(),
		startedAt: now,
		lastSeen:  now,
		ballots:   ballots,
		feeds:     make(map[domain.CatalogName]*feedHandle),
		cancel:    cancel,
	}

	for _, name := range domain.Catalogs() {
		h, err := s.openFeed(ctx, name)
		if err != nil {
			sess.close()
			return domain.SessionInfo{}, err
		}
		sess.feeds[name] = h
	}

	for _, h := range sess.feeds {
		sess.wg.Go(func() { h.trigger.Run(sessCtx) })
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.sessionRec.SessionStarted()
	slog.InfoContext(ctx, "Session started", "session_id", sess.id.String())

	return sess.info(), nil
}

func (s *Service) openFeed(ctx context.Context, name domain.CatalogName) (*feedHandle, error) {
	src, err := s.catalogs.Source(name)
	if err != nil {
		return nil, err
	}

	opts := []feed.Option{feed.WithClock(s.clock), feed.WithLatency(s.cfg.FetchLatency)}
	if s.feedObs != nil {
		opts = append(opts, feed.WithObserver(s.feedObs.Observer(name)))
	}

	p, err := feed.Open(ctx, src, s.cfg.InitialSize, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s feed: %w", name, err)
	}
	return &feedHandle{paginator: p, trigger: feed.NewScrollTrigger(p, s.cfg.PageSize)}, nil
}

// EndSession tears a session down. Pending page loads are discarded.
func (s *Service) EndSession(ctx context.Context, id uuid.UUID) error {
	if !s.end(id, "ended") {
		return domain.ErrSessionNotFound
	}
	slog.InfoContext(ctx, "Session ended", "session_id", id.String())
	return nil
}

func (s *Service) end(id uuid.UUID, reason string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return false
	}
	sess.close()
	s.sessionRec.SessionEnded(reason)
	return true
}

// lookup returns a live session and marks it as used.
func (s *Service) lookup(id uuid.UUID) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess.touch(s.clock.Now())
	return sess, nil
}

// Session returns the outward view of a session.
func (s *Service) Session(_ context.Context, id uuid.UUID) (domain.SessionInfo, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	return sess.info(), nil
}

// ConnectWallet flips the wallet flag. No keys or signatures are involved.
func (s *Service) ConnectWallet(ctx context.Context, id uuid.UUID, connected bool) (domain.SessionInfo, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.SessionInfo{}, err
	}

	sess.mu.Lock()
	sess.wallet = connected
	sess.mu.Unlock()

	slog.DebugContext(ctx, "Wallet flag changed", "session_id", id.String(), "connected", connected)
	return sess.info(), nil
}

// CastVote applies the exclusive-ballot toggle for one item.
func (s *Service) CastVote(ctx context.Context, id uuid.UUID, itemID string, dir domain.Direction) (domain.VotableItem, domain.VoteOutcome, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.VotableItem{}, 0, err
	}

	item, outcome, err := sess.ballots.CastVote(itemID, dir)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrItemNotFound):
			s.votesRec.ObserveRejected("not_found")
		case errors.Is(err, domain.ErrInvalidDirection):
			s.votesRec.ObserveRejected("invalid_direction")
		}
		return domain.VotableItem{}, 0, err
	}

	s.votesRec.ObserveCast(outcome, dir)
	slog.DebugContext(ctx, "Vote applied",
		"session_id", id.String(),
		"item_id", itemID,
		"outcome", outcome.String(),
		"upvotes", item.Upvotes,
		"downvotes", item.Downvotes,
	)
	return item, outcome, nil
}

// Votes returns a snapshot of the votable items, optionally narrowed to one category.
func (s *Service) Votes(_ context.Context, id uuid.UUID, category string) ([]domain.VotableItem, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return ballot.FilterByCategory(sess.ballots.Items(), category), nil
}

// Rewards recomputes the viewer's earnings from the current ballots and the loaded courses.
func (s *Service) Rewards(_ context.Context, id uuid.UUID) (domain.RewardSummary, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.RewardSummary{}, err
	}

	summary := domain.RewardSummary{
		VoteRewards: sess.ballots.TotalRewardEarned(),
		VotesCast:   sess.ballots.ParticipationCount(),
	}
	if h, ok := sess.feeds[domain.CatalogCourses]; ok {
		for _, course := range h.paginator.State().LoadedItems {
			if course.Completed {
				summary.CompletedCourses++
				summary.LearnRewards += course.Reward
			}
		}
	}
	summary.Total = summary.VoteRewards + summary.LearnRewards
	return summary, nil
}

// FeedView is a filtered feed snapshot.
type FeedView struct {
	Items     []domain.FeedItem `json:"items"`
	Featured  []domain.FeedItem `json:"featured"`
	Loaded    int               `json:"loaded"`
	HasMore   bool              `json:"hasMore"`
	IsLoading bool              `json:"isLoading"`
}

// Feed filters the loaded items of a catalog. It never triggers a load.
func (s *Service) Feed(_ context.Context, id uuid.UUID, name domain.CatalogName, search feed.Search) (FeedView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return FeedView{}, err
	}
	h, err := sess.feed(name)
	if err != nil {
		return FeedView{}, err
	}

	state := h.paginator.State()
	return FeedView{
		Items:     search.Apply(state.LoadedItems),
		Featured:  feed.Featured(state.LoadedItems),
		Loaded:    len(state.LoadedItems),
		HasMore:   state.HasMore,
		IsLoading: state.IsLoading,
	}, nil
}

// LoadNextPage starts loading the next page of a catalog. A pageSize of 0 selects the
// configured default. started is false when the guard absorbed the request.
func (s *Service) LoadNextPage(ctx context.Context, id uuid.UUID, name domain.CatalogName, pageSize int) (done <-chan error, started bool, err error) {
	if pageSize == 0 {
		pageSize = s.cfg.PageSize
	}
	if pageSize < 0 || pageSize > s.cfg.MaxPageSize {
		return nil, false, fmt.Errorf("%w: %d not in [1, %d]", domain.ErrInvalidPageSize, pageSize, s.cfg.MaxPageSize)
	}

	sess, err := s.lookup(id)
	if err != nil {
		return nil, false, err
	}
	h, err := sess.feed(name)
	if err != nil {
		return nil, false, err
	}

	done, started = h.paginator.LoadNextPage(ctx, pageSize)
	return done, started, nil
}

// NearBottom forwards a scroll signal to the catalog's trigger.
func (s *Service) NearBottom(_ context.Context, id uuid.UUID, name domain.CatalogName) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	h, err := sess.feed(name)
	if err != nil {
		return err
	}
	h.trigger.NearBottom()
	return nil
}

// ActiveSessions reports how many sessions are live.
func (s *Service) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown ends every live session.
func (s *Service) Shutdown(ctx context.Context) {
	s.mu.Lock()
	ids := make([]uuid.UUID, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.end(id, "shutdown")
	}
	slog.InfoContext(ctx, "All sessions ended", "count", len(ids))
}

type nopRecorder struct{}

func (nopRecorder) ObserveCast(domain.VoteOutcome, domain.Direction) {}
func (nopRecorder) ObserveRejected(string)                           {}
func (nopRecorder) SessionStarted()                                  {}
func (nopRecorder) SessionEnded(string)                              {}
