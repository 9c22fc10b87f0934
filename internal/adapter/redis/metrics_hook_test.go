package redis

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/dappboard/internal/domain"
)

type commandCall struct {
	operation string
	status    string
}

type fakeRecorder struct {
	mu         sync.Mutex
	calls      []commandCall
	dialErrors int
}

func (r *fakeRecorder) ObserveCommand(operation, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, commandCall{operation, status})
}

func (r *fakeRecorder) ObserveDialError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialErrors++
}

func (r *fakeRecorder) snapshot() ([]commandCall, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]commandCall(nil), r.calls...), r.dialErrors
}

func TestMetricsHook_RecordsCommands(t *testing.T) {
	rec := &fakeRecorder{}
	_, rdb := setupMiniredis(t, NewMetricsHook(rec, clockwork.NewFakeClock()))
	store := NewCatalogStore(rdb)

	_, err := store.Len(t.Context(), domain.CatalogDApps)
	require.NoError(t, err)
	err = rdb.Get(t.Context(), "missing").Err()
	require.ErrorIs(t, err, goredis.Nil)

	calls, _ := rec.snapshot()
	assert.Contains(t, calls, commandCall{"llen", "success"})
	assert.Contains(t, calls, commandCall{"get", "success"}, "redis.Nil is not an error")
}

func TestMetricsHook_RecordsPipelinesAsOneOperation(t *testing.T) {
	rec := &fakeRecorder{}
	_, rdb := setupMiniredis(t, NewMetricsHook(rec, clockwork.NewFakeClock()))
	store := NewCatalogStore(rdb)
	require.NoError(t, store.Replace(t.Context(), domain.CatalogDApps, numbered(4)))

	before, _ := rec.snapshot()
	_, err := store.Fetch(t.Context(), domain.CatalogDApps, 0, 3)
	require.NoError(t, err)

	after, _ := rec.snapshot()
	fetched := after[len(before):]
	assert.Contains(t, fetched, commandCall{"pipeline", "success"})
	assert.NotContains(t, fetched, commandCall{"lrange", "success"})
}

func TestMetricsHook_RecordsFailures(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rec := &fakeRecorder{}
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	rdb.AddHook(NewMetricsHook(rec, clockwork.NewFakeClock()))
	t.Cleanup(func() { _ = rdb.Close() })

	mr.Close()
	require.Error(t, rdb.Ping(t.Context()).Err())

	calls, dialErrors := rec.snapshot()
	assert.Contains(t, calls, commandCall{"ping", "error"})
	assert.GreaterOrEqual(t, dialErrors, 1)
}
