package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/dappboard/internal/ballot"
	"github.com/pscheid92/dappboard/internal/domain"
	"github.com/pscheid92/dappboard/internal/feed"
)

type feedHandle struct {
	paginator *feed.Paginator
	trigger   *feed.ScrollTrigger
}

type session struct {
	id        uuid.UUID
	startedAt time.Time
	ballots   *ballot.Aggregator
	feeds     map[domain.CatalogName]*feedHandle

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	lastSeen time.Time
	wallet   bool
}

func (s *session) info() domain.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SessionInfo{ID: s.id, StartedAt: s.startedAt, WalletConnected: s.wallet}
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *session) feed(name domain.CatalogName) (*feedHandle, error) {
	h, ok := s.feeds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, name)
	}
	return h, nil
}

// close stops the scroll triggers, then tears down every paginator. In-flight fetches
// are cancelled and their results discarded.
func (s *session) close() {
	s.cancel()
	s.wg.Wait()
	for _, h := range s.feeds {
		h.paginator.Close()
	}
}
