package metrics

import (
	"github.com/pscheid92/dappboard/internal/domain"
	"github.com/pscheid92/dappboard/internal/feed"
	"github.com/prometheus/client_golang/prometheus"
)

// FeedMetrics holds Prometheus metrics for catalog page loads.
type FeedMetrics struct {
	Loads         *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	ItemsLoaded   *prometheus.CounterVec
}

// NewFeedMetrics creates and registers feed metrics on the given registry.
func NewFeedMetrics(reg prometheus.Registerer) *FeedMetrics {
	m := &FeedMetrics{
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "loads_total",
			Help:      "Total number of page loads, by catalog and result.",
		}, []string{"catalog", "result"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of page fetches in seconds, including simulated latency.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"catalog"}),
		ItemsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "items_loaded_total",
			Help:      "Total number of items appended to feeds, by catalog.",
		}, []string{"catalog"}),
	}

	reg.MustRegister(m.Loads, m.FetchDuration, m.ItemsLoaded)
	return m
}

// Observer returns a paginator observer bound to one catalog.
func (m *FeedMetrics) Observer(name domain.CatalogName) func(feed.LoadEvent) {
	return func(e feed.LoadEvent) {
		m.Loads.WithLabelValues(string(name), string(e.Result)).Inc()
		m.FetchDuration.WithLabelValues(string(name)).Observe(e.Duration.Seconds())
		if e.Result == feed.LoadLoaded || e.Result == feed.LoadExhausted {
			m.ItemsLoaded.WithLabelValues(string(name)).Add(float64(e.Items))
		}
	}
}
