package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pscheid92/dappboard/internal/platform/correlation"
)

const maxReapInterval = time.Minute

func (s *Service) reapInterval() time.Duration {
	return min(s.cfg.IdleTimeout/2, maxReapInterval)
}

// Run reaps idle sessions until ctx is cancelled, then ends every remaining session.
func (s *Service) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.reapInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Shutdown(context.WithoutCancel(ctx))
			return
		case <-ticker.Chan():
			s.ReapIdle(correlation.WithID(ctx, correlation.NewID()))
		}
	}
}

// ReapIdle ends every session untouched for at least the idle timeout and reports
// how many it ended.
func (s *Service) ReapIdle(ctx context.Context) int {
	now := s.clock.Now()

	s.mu.Lock()
	var idle []uuid.UUID
	for id, sess := range s.sessions {
		if now.Sub(sess.idleSince()) >= s.cfg.IdleTimeout {
			idle = append(idle, id)
		}
	}
	s.mu.Unlock()

	reaped := 0
	for _, id := range idle {
		if s.end(id, "idle") {
			reaped++
			slog.InfoContext(ctx, "Idle session reaped", "session_id", id.String())
		}
	}
	return reaped
}
