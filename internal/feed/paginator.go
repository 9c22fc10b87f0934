package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/dappboard/internal/domain"
	"github.com/pscheid92/dappboard/internal/platform/correlation"
)

// ErrClosed is delivered to a pending load whose paginator was torn down before the
// fetch completed. The fetched page, if any, is discarded.
var ErrClosed = errors.New("paginator closed")

// LoadResult labels how a load ended, for observers.
type LoadResult string

const (
	LoadLoaded    LoadResult = "loaded"
	LoadExhausted LoadResult = "exhausted"
	LoadFailed    LoadResult = "failed"
	LoadDiscarded LoadResult = "discarded"
)

// LoadEvent is reported to the observer after every fetch.
type LoadEvent struct {
	Result   LoadResult
	Items    int
	Duration time.Duration
}

type Option func(*Paginator)

// WithClock sets the clock used to time fetches.
func WithClock(clock clockwork.Clock) Option {
	return func(p *Paginator) { p.clock = clock }
}

// WithLatency delays every page fetch by d on the paginator's clock. It models network
// latency; tests pair it with a fake clock.
func WithLatency(d time.Duration) Option {
	return func(p *Paginator) { p.latency = d }
}

// WithObserver registers a callback invoked after every fetch completes.
func WithObserver(fn func(LoadEvent)) Option {
	return func(p *Paginator) { p.observe = fn }
}

// Paginator owns the loaded prefix of one catalog.
type Paginator struct {
	source  domain.CatalogSource
	clock   clockwork.Clock
	latency time.Duration
	observe func(LoadEvent)

	mu     sync.Mutex
	state  domain.FeedState
	closed bool
	cancel context.CancelFunc

	inflight sync.WaitGroup
}

// Open creates a paginator and synchronously loads the first initialSize items.
func Open(ctx context.Context, source domain.CatalogSource, initialSize int, opts ...Option) (*Paginator, error) {
	p := &Paginator{
		source:  source,
		clock:   clockwork.NewRealClock(),
		observe: func(LoadEvent) {},
		state:   domain.FeedState{HasMore: true},
	}
	for _, opt := range opts {
		opt(p)
	}

	if initialSize <= 0 {
		return p, nil
	}

	page, err := source.Fetch(ctx, 0, initialSize)
	if err != nil {
		return nil, fmt.Errorf("%w: initial page: %w", domain.ErrFetchFailed, err)
	}
	p.state = CompleteLoad(p.state, page, initialSize)

	return p, nil
}

// LoadNextPage starts fetching up to pageSize items after the current cursor.
//
// It reports false and does nothing when a load is already in flight, the catalog is
// exhausted, the paginator is closed, or pageSize is not positive. Otherwise the returned
// channel receives exactly one value once the fetch has been applied: nil on success,
// an ErrFetchFailed wrap on source failure, or ErrClosed if torn down meanwhile.
//
// The fetch is detached from ctx cancellation (a request ending does not abort it) but
// keeps its values, so log correlation survives. Loads started outside a request get
// their own correlation ID.
func (p *Paginator) LoadNextPage(ctx context.Context, pageSize int) (<-chan error, bool) {
	if pageSize <= 0 {
		return nil, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, false
	}

	next, ok := BeginLoad(p.state)
	if !ok {
		return nil, false
	}
	p.state = next

	fetchCtx, cancel := context.WithCancel(correlation.Ensure(context.WithoutCancel(ctx)))
	p.cancel = cancel

	done := make(chan error, 1)
	p.inflight.Add(1)
	go p.fetch(fetchCtx, Cursor(next), pageSize, done)

	return done, true
}

func (p *Paginator) fetch(ctx context.Context, cursor, pageSize int, done chan<- error) {
	defer p.inflight.Done()

	start := p.clock.Now()
	page, fetchErr := p.delayedFetch(ctx, cursor, pageSize)
	event := LoadEvent{Duration: p.clock.Since(start), Items: len(page.Items)}

	err := p.apply(page, fetchErr, pageSize, &event)
	if err != nil && !errors.Is(err, ErrClosed) {
		slog.WarnContext(ctx, "Feed page fetch failed", "cursor", cursor, "page_size", pageSize, "error", err)
	} else {
		slog.DebugContext(ctx, "Feed page applied", "cursor", cursor, "items", event.Items, "result", event.Result)
	}

	p.observe(event)
	done <- err
}

func (p *Paginator) delayedFetch(ctx context.Context, cursor, pageSize int) (domain.Page, error) {
	if p.latency > 0 {
		select {
		case <-p.clock.After(p.latency):
		case <-ctx.Done():
			return domain.Page{}, fmt.Errorf("waiting for fetch: %w", ctx.Err())
		}
	}
	return p.source.Fetch(ctx, cursor, pageSize)
}

func (p *Paginator) apply(page domain.Page, fetchErr error, pageSize int, event *LoadEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	if p.closed {
		event.Result = LoadDiscarded
		return ErrClosed
	}

	if fetchErr != nil {
		p.state = FailLoad(p.state)
		event.Result = LoadFailed
		return fmt.Errorf("%w: %w", domain.ErrFetchFailed, fetchErr)
	}

	p.state = CompleteLoad(p.state, page, pageSize)
	event.Result = LoadLoaded
	if !p.state.HasMore {
		event.Result = LoadExhausted
	}
	return nil
}

// State returns a snapshot of the feed.
func (p *Paginator) State() domain.FeedState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// FilterByQuery searches the loaded items only; it never triggers a load.
func (p *Paginator) FilterByQuery(query string) []domain.FeedItem {
	return FilterByQuery(p.State().LoadedItems, query)
}

// Search applies query and category filters to the loaded items.
func (p *Paginator) Search(s Search) []domain.FeedItem {
	return s.Apply(p.State().LoadedItems)
}

// Close tears the paginator down: the in-flight fetch is cancelled, its completion is
// discarded, and no further loads are accepted. Close waits for the fetch goroutine to exit.
func (p *Paginator) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	p.inflight.Wait()
}
