package feed

import (
	"context"
	"log/slog"
)

// Loader is the part of Paginator a trigger drives.
type Loader interface {
	LoadNextPage(ctx context.Context, pageSize int) (<-chan error, bool)
}

// ScrollTrigger turns "viewport near bottom" signals into page loads. Signals arriving
// faster than they are consumed are coalesced; the loader's own guard absorbs the rest.
type ScrollTrigger struct {
	loader   Loader
	pageSize int
	signals  chan struct{}
}

func NewScrollTrigger(loader Loader, pageSize int) *ScrollTrigger {
	return &ScrollTrigger{
		loader:   loader,
		pageSize: pageSize,
		signals:  make(chan struct{}, 1),
	}
}

// NearBottom records a signal without blocking.
func (t *ScrollTrigger) NearBottom() {
	select {
	case t.signals <- struct{}{}:
	default:
	}
}

// Run forwards signals until ctx is cancelled, which releases the listener.
func (t *ScrollTrigger) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.signals:
			if _, started := t.loader.LoadNextPage(ctx, t.pageSize); !started {
				slog.DebugContext(ctx, "Scroll signal absorbed", "page_size", t.pageSize)
			}
		}
	}
}
