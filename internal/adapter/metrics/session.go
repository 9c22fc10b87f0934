package metrics

import "github.com/prometheus/client_golang/prometheus"

// SessionMetrics holds Prometheus metrics for viewer sessions.
type SessionMetrics struct {
	ActiveSessions prometheus.Gauge
	SessionsEnded  *prometheus.CounterVec
}

// NewSessionMetrics creates and registers session metrics on the given registry.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Number of live viewer sessions.",
		}),
		SessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "ended_total",
			Help:      "Total number of ended viewer sessions, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.ActiveSessions, m.SessionsEnded)
	return m
}

func (m *SessionMetrics) SessionStarted() {
	m.ActiveSessions.Inc()
}

// SessionEnded records a torn down session; reason is "ended", "idle" or "shutdown".
func (m *SessionMetrics) SessionEnded(reason string) {
	m.ActiveSessions.Dec()
	m.SessionsEnded.WithLabelValues(reason).Inc()
}
