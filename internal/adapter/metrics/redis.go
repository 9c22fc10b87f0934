package metrics

import (
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/prometheus/client_golang/prometheus"
)

// RedisMetrics tracks Redis commands and the circuit breaker in front of them.
type RedisMetrics struct {
	OpsTotal            *prometheus.CounterVec
	OpDuration          *prometheus.HistogramVec
	DialErrors          prometheus.Counter
	BreakerState        prometheus.Gauge
	BreakerStateChanges *prometheus.CounterVec
}

// NewRedisMetrics creates and registers Redis metrics on the given registry.
func NewRedisMetrics(reg prometheus.Registerer) *RedisMetrics {
	m := &RedisMetrics{
		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operations_total",
			Help:      "Total Redis operations by operation and status.",
		}, []string{"operation", "status"}),
		OpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operation_duration_seconds",
			Help:      "Redis operation duration in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DialErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "connection_errors_total",
			Help:      "Total failed Redis dials.",
		}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
		BreakerStateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "circuit_breaker_state_changes_total",
			Help:      "Total number of circuit breaker transitions, by target state.",
		}, []string{"state"}),
	}

	reg.MustRegister(m.OpsTotal, m.OpDuration, m.DialErrors, m.BreakerState, m.BreakerStateChanges)
	return m
}

// ObserveBreaker records a breaker transition. stateValue maps states onto gauge values.
func (m *RedisMetrics) ObserveBreaker(to circuitbreaker.State, stateValue float64) {
	m.BreakerStateChanges.WithLabelValues(to.String()).Inc()
	m.BreakerState.Set(stateValue)
}

// ObserveCommand records one command or pipeline round trip.
func (m *RedisMetrics) ObserveCommand(operation, status string, d time.Duration) {
	m.OpsTotal.WithLabelValues(operation, status).Inc()
	m.OpDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *RedisMetrics) ObserveDialError() {
	m.DialErrors.Inc()
}
