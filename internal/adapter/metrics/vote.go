package metrics

import (
	"github.com/pscheid92/dappboard/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// VoteMetrics holds Prometheus metrics for ballots.
type VoteMetrics struct {
	VotesCast     *prometheus.CounterVec
	VotesRejected *prometheus.CounterVec
}

// NewVoteMetrics creates and registers vote metrics on the given registry.
func NewVoteMetrics(reg prometheus.Registerer) *VoteMetrics {
	m := &VoteMetrics{
		VotesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Total number of applied ballots, by outcome and direction.",
		}, []string{"outcome", "direction"}),
		VotesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_rejected_total",
			Help:      "Total number of rejected ballots, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.VotesCast, m.VotesRejected)
	return m
}

// ObserveCast records an applied ballot.
func (m *VoteMetrics) ObserveCast(outcome domain.VoteOutcome, dir domain.Direction) {
	m.VotesCast.WithLabelValues(outcome.String(), dir.String()).Inc()
}

// ObserveRejected records a ballot that changed nothing.
func (m *VoteMetrics) ObserveRejected(reason string) {
	m.VotesRejected.WithLabelValues(reason).Inc()
}
