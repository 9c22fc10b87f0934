package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/pscheid92/dappboard/internal/domain"
	"golang.org/x/sync/singleflight"
)

// sharedFetchTimeout bounds a collapsed fetch once it no longer follows any caller's cancellation.
const sharedFetchTimeout = 30 * time.Second

// Shared collapses concurrent fetches of the same window into one call to the
// underlying source. The shared call is detached from every caller's cancellation:
// a caller whose context ends returns early and the fetch continues for the rest.
type Shared struct {
	name    domain.CatalogName
	source  domain.CatalogSource
	group   singleflight.Group
	timeout time.Duration
}

func NewShared(name domain.CatalogName, source domain.CatalogSource) *Shared {
	return &Shared{name: name, source: source, timeout: sharedFetchTimeout}
}

func (s *Shared) Fetch(ctx context.Context, cursor, limit int) (domain.Page, error) {
	key := fmt.Sprintf("%s:%d:%d", s.name, cursor, limit)

	ch := s.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.source.Fetch(fetchCtx, cursor, limit)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return domain.Page{}, fmt.Errorf("shared fetch %s: %w", key, ctx.Err())
	}
	if res.Err != nil {
		return domain.Page{}, res.Err
	}

	page := res.Val.(domain.Page)
	items := make([]domain.FeedItem, len(page.Items))
	copy(items, page.Items)
	return domain.Page{Items: items, More: page.More}, nil
}
