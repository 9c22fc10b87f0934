package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/dappboard/internal/platform/retry"
)

var fastPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   1 * time.Millisecond,
	RateLimitBackoff: 5 * time.Millisecond,
}

func alwaysRetry(error) retry.Action { return retry.Retry }
func alwaysStop(error) retry.Action  { return retry.Stop }

func TestDo_SuccessAfterRetries(t *testing.T) {
	calls := 0
	val, err := retry.Do(context.Background(), fastPolicy, alwaysRetry, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy, alwaysStop, func(context.Context) (struct{}, error) {
		calls++
		return struct{}{}, permanent
	})

	var permErr *retry.PermanentError
	require.ErrorAs(t, err, &permErr)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustedRetries(t *testing.T) {
	underlying := errors.New("transient")
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy, alwaysRetry, func(context.Context) (struct{}, error) {
		calls++
		return struct{}{}, underlying
	})

	assert.ErrorIs(t, err, underlying)
	assert.ErrorContains(t, err, "failed after 3 attempts")
	assert.Equal(t, fastPolicy.MaxAttempts, calls)
}

func TestDo_RejectsEmptyPolicy(t *testing.T) {
	_, err := retry.Do(context.Background(), retry.Policy{}, alwaysRetry, func(context.Context) (int, error) {
		return 1, nil
	})
	assert.Error(t, err)
}

func TestDo_BackoffDoublesUpToCap(t *testing.T) {
	var observed []time.Duration
	p := retry.Policy{
		MaxAttempts:    5,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     3 * time.Millisecond,
		OnRetry:        func(_ int, _ error, backoff time.Duration) { observed = append(observed, backoff) },
	}

	_ = retry.DoVoid(context.Background(), p, alwaysRetry, func(context.Context) error {
		return errors.New("fail")
	})

	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond, 3 * time.Millisecond}, observed)
}

func TestDo_RateLimitBackoff(t *testing.T) {
	var observed time.Duration
	p := retry.Policy{
		MaxAttempts:      2,
		InitialBackoff:   1 * time.Millisecond,
		RateLimitBackoff: 5 * time.Millisecond,
		OnRetry:          func(_ int, _ error, backoff time.Duration) { observed = backoff },
	}

	_ = retry.DoVoid(context.Background(), p, func(error) retry.Action { return retry.After }, func(context.Context) error {
		return errors.New("rate limited")
	})

	assert.Equal(t, 5*time.Millisecond, observed)
}

func TestDo_WaitsOnClock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p := retry.Policy{MaxAttempts: 2, InitialBackoff: time.Minute, Clock: clock}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- retry.DoVoid(context.Background(), p, alwaysRetry, func(context.Context) error {
			calls++
			if calls == 1 {
				return errors.New("transient")
			}
			return nil
		})
	}()

	require.NoError(t, clock.BlockUntilContext(t.Context(), 1))
	clock.Advance(time.Minute)

	require.NoError(t, <-done)
	assert.Equal(t, 2, calls)
}

func TestDo_ContextCancellationDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := retry.Policy{MaxAttempts: 3, InitialBackoff: 10 * time.Second}

	calls := 0
	_, err := retry.Do(ctx, p, alwaysRetry, func(context.Context) (struct{}, error) {
		calls++
		cancel()
		return struct{}{}, errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryCallback(t *testing.T) {
	var recorded []int
	p := fastPolicy
	p.OnRetry = func(attempt int, _ error, _ time.Duration) {
		recorded = append(recorded, attempt)
	}

	_ = retry.DoVoid(context.Background(), p, alwaysRetry, func(context.Context) error {
		return errors.New("fail")
	})

	// no callback for the final, exhausting attempt
	assert.Equal(t, []int{1, 2}, recorded)
}

func TestTransient(t *testing.T) {
	assert.Equal(t, retry.Retry, retry.Transient(errors.New("connection refused")))
	assert.Equal(t, retry.Stop, retry.Transient(context.Canceled))
	assert.Equal(t, retry.Stop, retry.Transient(context.DeadlineExceeded))
}
