package dashboard

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/felixgeelhaar/chamai/pkg/application"
	"github.com/felixgeelhaar/chamai/pkg/domain/scoring"
)

// Metrics exposes the live score as Prometheus gauges on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	score    prometheus.Gauge
	maxScore prometheus.Gauge
	percent  prometheus.Gauge
	items    prometheus.Gauge
	answered *prometheus.GaugeVec
	changes  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		score: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chamai",
			Name:      "score",
			Help:      "Reviewer score of the current responses.",
		}),
		maxScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chamai",
			Name:      "max_score",
			Help:      "Best reachable score for the loaded checklist.",
		}),
		percent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chamai",
			Name:      "score_percent",
			Help:      "Score as a percentage of the maximum.",
		}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chamai",
			Name:      "items",
			Help:      "Number of checklist items.",
		}),
		answered: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "chamai",
			Name:      "answered_items",
			Help:      "Items with an answer, per role.",
		}, []string{"role"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chamai",
			Name:      "changes_total",
			Help:      "Response store mutations by kind.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.score, m.maxScore, m.percent, m.items, m.answered, m.changes)
	return m
}

// Observe records a summary.
func (m *Metrics) Observe(s scoring.Summary) {
	m.score.Set(s.Score)
	m.maxScore.Set(s.Max)
	m.percent.Set(s.Percent)
	m.items.Set(float64(s.Items))
	m.answered.WithLabelValues("author").Set(float64(s.Answered.Author))
	m.answered.WithLabelValues("reviewer").Set(float64(s.Answered.Reviewer))
}

// Count records a store mutation.
func (m *Metrics) Count(kind application.ChangeKind) {
	m.changes.WithLabelValues(string(kind)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
