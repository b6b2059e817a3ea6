package ranker

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports ranking outcomes to Prometheus.
type Metrics struct {
	decisions  *prometheus.CounterVec
	noWinner   prometheus.Counter
	offers     *prometheus.CounterVec
	candidates prometheus.Histogram
}

// NewMetrics creates the ranker collectors and registers them with reg.
// A nil reg leaves the collectors unregistered, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netrank",
			Subsystem: "ranker",
			Name:      "decisions_total",
			Help:      "Best-network decisions by the step that settled them",
		}, []string{"decided_by"}),
		noWinner: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netrank",
			Subsystem: "ranker",
			Name:      "no_winner_total",
			Help:      "Requests no candidate could satisfy",
		}),
		offers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netrank",
			Subsystem: "ranker",
			Name:      "offers_total",
			Help:      "Offer evaluations by result",
		}, []string{"result"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "netrank",
			Subsystem: "ranker",
			Name:      "candidates",
			Help:      "Number of candidates per best-network call",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8, 12, 16, 32},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.decisions, m.noWinner, m.offers, m.candidates)
	}
	return m
}

func (m *Metrics) observeDecision(decidedBy string, candidates int) {
	if m == nil {
		return
	}
	m.candidates.Observe(float64(candidates))
	if decidedBy == StepNone {
		m.noWinner.Inc()
		return
	}
	m.decisions.WithLabelValues(decidedBy).Inc()
}

func (m *Metrics) observeOffer(mightBeat bool) {
	if m == nil {
		return
	}
	result := "cannot-beat"
	if mightBeat {
		result = "might-beat"
	}
	m.offers.WithLabelValues(result).Inc()
}
