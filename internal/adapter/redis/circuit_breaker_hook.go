package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	goredis "github.com/redis/go-redis/v9"
)

// CircuitBreakerHook implements redis.Hook and guards every dial, command and pipeline
// with one circuit breaker. While the breaker is open, calls fail immediately with an
// error wrapping circuitbreaker.ErrOpen.
type CircuitBreakerHook struct {
	cb circuitbreaker.CircuitBreaker[any]
}

var _ goredis.Hook = (*CircuitBreakerHook)(nil)

// StateListener is notified on every breaker transition.
type StateListener func(from, to circuitbreaker.State)

type breakerSettings struct {
	delay    time.Duration
	listener StateListener
}

type BreakerOption func(*breakerSettings)

// WithOpenDelay sets how long the breaker stays open before letting a probe through.
func WithOpenDelay(d time.Duration) BreakerOption {
	return func(s *breakerSettings) { s.delay = d }
}

// WithStateListener registers a callback for state transitions, e.g. for metrics.
func WithStateListener(fn StateListener) BreakerOption {
	return func(s *breakerSettings) { s.listener = fn }
}

// NewCircuitBreakerHook creates a hook that opens at a 60% failure rate over at least
// 5 executions within 10s, stays open for 30s by default, and closes again after one
// successful probe.
func NewCircuitBreakerHook(opts ...BreakerOption) *CircuitBreakerHook {
	settings := breakerSettings{delay: 30 * time.Second}
	for _, opt := range opts {
		opt(&settings)
	}

	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(settings.delay).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "redis",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			if settings.listener != nil {
				settings.listener(e.OldState, e.NewState)
			}
		}).
		Build()

	return &CircuitBreakerHook{cb: cb}
}

// StateValue maps a breaker state onto a gauge value: 0 closed, 1 half-open, 2 open.
func StateValue(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

func (h *CircuitBreakerHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if !h.cb.TryAcquirePermit() {
			return nil, fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
		}
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.cb.RecordError(err)
			return nil, fmt.Errorf("circuit breaker dial failed: %w", err)
		}
		h.cb.RecordSuccess()
		return conn, nil
	}
}

// ProcessHook treats redis.Nil as a success: a missing key is an answer, not an outage.
func (h *CircuitBreakerHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			slog.DebugContext(ctx, "Circuit breaker open, rejecting command", "command", cmd.Name())
			return fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
		}

		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, goredis.Nil) {
			h.cb.RecordError(err)
			return fmt.Errorf("circuit breaker process failed: %w", err)
		}
		h.cb.RecordSuccess()
		return err
	}
}

func (h *CircuitBreakerHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			return fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
		}

		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, goredis.Nil) {
			h.cb.RecordError(err)
			return fmt.Errorf("circuit breaker pipeline failed: %w", err)
		}
		h.cb.RecordSuccess()
		return err
	}
}

// State returns the current breaker state.
func (h *CircuitBreakerHook) State() circuitbreaker.State {
	return h.cb.State()
}
