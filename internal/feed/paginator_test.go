package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/dappboard/internal/domain"
	"github.com/pscheid92/dappboard/internal/platform/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(ids ...string) []domain.FeedItem {
	out := make([]domain.FeedItem, len(ids))
	for i, id := range ids {
		out[i] = domain.FeedItem{ID: id, Name: "Item " + id}
	}
	return out
}

func itemIDs(in []domain.FeedItem) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		out = append(out, item.ID)
	}
	return out
}

// sliceSource serves a fixed catalog and can be told to fail.
type sliceSource struct {
	items []domain.FeedItem
	fail  atomic.Bool
	calls atomic.Int32
}

func newSliceSource(n int) *sliceSource {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprint(i + 1)
	}
	return &sliceSource{items: items(ids...)}
}

func (s *sliceSource) Fetch(ctx context.Context, cursor, limit int) (domain.Page, error) {
	s.calls.Add(1)
	if s.fail.Load() {
		return domain.Page{}, errors.New("backend unavailable")
	}
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}
	if cursor >= len(s.items) {
		return domain.Page{}, nil
	}
	end := min(cursor+limit, len(s.items))
	page := make([]domain.FeedItem, end-cursor)
	copy(page, s.items[cursor:end])
	return domain.Page{Items: page, More: end < len(s.items)}, nil
}

// awaitLoad lets the latency timer fire and waits for the load to complete.
func awaitLoad(t *testing.T, clock *clockwork.FakeClock, done <-chan error) error {
	t.Helper()

	require.NoError(t, clock.BlockUntilContext(t.Context(), 1))
	clock.Advance(time.Second)

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("load did not complete")
		return nil
	}
}

func TestOpen_LoadsInitialPrefix(t *testing.T) {
	p, err := Open(t.Context(), newSliceSource(6), 3)
	require.NoError(t, err)
	defer p.Close()

	state := p.State()
	assert.Equal(t, []string{"1", "2", "3"}, itemIDs(state.LoadedItems))
	assert.True(t, state.HasMore)
	assert.False(t, state.IsLoading)
}

func TestOpen_SmallCatalogIsExhaustedImmediately(t *testing.T) {
	p, err := Open(t.Context(), newSliceSource(2), 3)
	require.NoError(t, err)
	defer p.Close()

	assert.False(t, p.State().HasMore)
	_, started := p.LoadNextPage(t.Context(), 3)
	assert.False(t, started)
}

func TestOpen_ZeroInitialSize(t *testing.T) {
	src := newSliceSource(6)
	p, err := Open(t.Context(), src, 0)
	require.NoError(t, err)
	defer p.Close()

	assert.Empty(t, p.State().LoadedItems)
	assert.True(t, p.State().HasMore)
	assert.Equal(t, int32(0), src.calls.Load())
}

func TestOpen_SourceFailure(t *testing.T) {
	src := newSliceSource(6)
	src.fail.Store(true)

	_, err := Open(t.Context(), src, 3)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
}

func TestLoadNextPage_PaginationTerminates(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p, err := Open(t.Context(), newSliceSource(6), 3, WithClock(clock), WithLatency(time.Second))
	require.NoError(t, err)
	defer p.Close()

	done, started := p.LoadNextPage(t.Context(), 3)
	require.True(t, started)
	assert.True(t, p.State().IsLoading)

	require.NoError(t, awaitLoad(t, clock, done))

	state := p.State()
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, itemIDs(state.LoadedItems))
	assert.False(t, state.HasMore)
	assert.False(t, state.IsLoading)

	_, started = p.LoadNextPage(t.Context(), 3)
	assert.False(t, started)
	assert.Len(t, p.State().LoadedItems, 6)
}

func TestLoadNextPage_WithoutLatency(t *testing.T) {
	p, err := Open(t.Context(), newSliceSource(10), 3)
	require.NoError(t, err)
	defer p.Close()

	done, started := p.LoadNextPage(t.Context(), 4)
	require.True(t, started)
	require.NoError(t, <-done)

	state := p.State()
	assert.Len(t, state.LoadedItems, 7)
	assert.True(t, state.HasMore)
}

func TestLoadNextPage_GuardAbsorbsOverlappingCalls(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := newSliceSource(9)
	p, err := Open(t.Context(), src, 3, WithClock(clock), WithLatency(time.Second))
	require.NoError(t, err)
	defer p.Close()

	var (
		wg      sync.WaitGroup
		started atomic.Int32
		doneCh  = make(chan (<-chan error), 1)
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if done, ok := p.LoadNextPage(t.Context(), 3); ok {
				started.Add(1)
				doneCh <- done
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), started.Load())
	require.NoError(t, awaitLoad(t, clock, <-doneCh))

	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, itemIDs(p.State().LoadedItems))
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestLoadNextPage_NoDuplicates(t *testing.T) {
	overlapping := domain.CatalogSourceFunc(func(_ context.Context, cursor, limit int) (domain.Page, error) {
		if cursor == 0 {
			return domain.Page{Items: items("1", "2", "3"), More: true}, nil
		}
		return domain.Page{Items: items("3", "4", "5"), More: true}, nil
	})

	p, err := Open(t.Context(), overlapping, 3)
	require.NoError(t, err)
	defer p.Close()

	done, started := p.LoadNextPage(t.Context(), 3)
	require.True(t, started)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, itemIDs(p.State().LoadedItems))
}

func TestLoadNextPage_FetchFailureAllowsRetry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := newSliceSource(6)
	p, err := Open(t.Context(), src, 3, WithClock(clock), WithLatency(time.Second))
	require.NoError(t, err)
	defer p.Close()

	before := p.State()
	src.fail.Store(true)

	done, started := p.LoadNextPage(t.Context(), 3)
	require.True(t, started)
	err = awaitLoad(t, clock, done)
	require.ErrorIs(t, err, domain.ErrFetchFailed)

	after := p.State()
	assert.Equal(t, before.LoadedItems, after.LoadedItems)
	assert.True(t, after.HasMore)
	assert.False(t, after.IsLoading)

	src.fail.Store(false)
	done, started = p.LoadNextPage(t.Context(), 3)
	require.True(t, started)
	require.NoError(t, awaitLoad(t, clock, done))
	assert.Len(t, p.State().LoadedItems, 6)
}

func TestLoadNextPage_RejectsNonPositivePageSize(t *testing.T) {
	p, err := Open(t.Context(), newSliceSource(6), 3)
	require.NoError(t, err)
	defer p.Close()

	for _, size := range []int{0, -1} {
		_, started := p.LoadNextPage(t.Context(), size)
		assert.False(t, started)
	}
	assert.False(t, p.State().IsLoading)
}

func TestLoadNextPage_SurvivesCallerCancellation(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p, err := Open(t.Context(), newSliceSource(6), 3, WithClock(clock), WithLatency(time.Second))
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(t.Context())
	done, started := p.LoadNextPage(ctx, 3)
	require.True(t, started)
	cancel()

	require.NoError(t, awaitLoad(t, clock, done))
	assert.Len(t, p.State().LoadedItems, 6)
}

func TestLoadNextPage_FetchCarriesCorrelationID(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	inner := newSliceSource(9)
	src := domain.CatalogSourceFunc(func(ctx context.Context, cursor, limit int) (domain.Page, error) {
		id, _ := correlation.ID(ctx)
		mu.Lock()
		seen = append(seen, id)
		mu.Unlock()
		return inner.Fetch(ctx, cursor, limit)
	})

	p, err := Open(t.Context(), src, 3)
	require.NoError(t, err)
	defer p.Close()

	done, started := p.LoadNextPage(correlation.WithID(t.Context(), "req-1"), 3)
	require.True(t, started)
	require.NoError(t, <-done)

	done, started = p.LoadNextPage(t.Context(), 3)
	require.True(t, started)
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.Equal(t, "req-1", seen[1])
	assert.NotEmpty(t, seen[2], "background loads get their own ID")
}

func TestClose_DiscardsInflightCompletion(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var events []LoadEvent
	p, err := Open(t.Context(), newSliceSource(6), 3,
		WithClock(clock),
		WithLatency(time.Second),
		WithObserver(func(e LoadEvent) { events = append(events, e) }),
	)
	require.NoError(t, err)

	done, started := p.LoadNextPage(t.Context(), 3)
	require.True(t, started)
	require.NoError(t, clock.BlockUntilContext(t.Context(), 1))

	p.Close()

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Len(t, p.State().LoadedItems, 3)
	require.Len(t, events, 1)
	assert.Equal(t, LoadDiscarded, events[0].Result)

	_, started = p.LoadNextPage(t.Context(), 3)
	assert.False(t, started)
}

func TestClose_Idempotent(t *testing.T) {
	p, err := Open(t.Context(), newSliceSource(6), 3)
	require.NoError(t, err)

	p.Close()
	p.Close()
}

func TestObserver_ReportsResults(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var (
		mu     sync.Mutex
		events []LoadEvent
	)
	p, err := Open(t.Context(), newSliceSource(9), 3,
		WithClock(clock),
		WithLatency(time.Second),
		WithObserver(func(e LoadEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		}),
	)
	require.NoError(t, err)
	defer p.Close()

	for range 2 {
		done, started := p.LoadNextPage(t.Context(), 3)
		require.True(t, started)
		require.NoError(t, awaitLoad(t, clock, done))
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 2)
	assert.Equal(t, LoadEvent{Result: LoadLoaded, Items: 3, Duration: time.Second}, events[0])
	assert.Equal(t, LoadEvent{Result: LoadExhausted, Items: 3, Duration: time.Second}, events[1])
}

func TestPaginator_SearchUsesLoadedItemsOnly(t *testing.T) {
	src := domain.CatalogSourceFunc(func(_ context.Context, cursor, limit int) (domain.Page, error) {
		all := []domain.FeedItem{
			{ID: "1", Name: "UniswapV3"},
			{ID: "2", Name: "SushiSwap"},
			{ID: "3", Name: "Aave"},
			{ID: "4", Name: "Uniswap Labs"},
		}
		end := min(cursor+limit, len(all))
		return domain.Page{Items: all[cursor:end], More: end < len(all)}, nil
	})

	p, err := Open(t.Context(), src, 3)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, []string{"1"}, itemIDs(p.FilterByQuery("uni")))
	assert.Equal(t, []string{"1", "2"}, itemIDs(p.Search(Search{Query: "swap"})))
	assert.False(t, p.State().IsLoading)
}
