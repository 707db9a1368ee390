// Package metrics provides Prometheus collectors for reconciliation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "offer_match"

// Metrics groups the reconciliation collectors. A nil *Metrics records nothing.
type Metrics struct {
	ingested      *prometheus.CounterVec
	batchDuration prometheus.Histogram
	reviews       *prometheus.CounterVec
	topScore      prometheus.Histogram
}

// New registers the collectors against registerer, the default registerer
// when nil.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ingested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "records_total",
				Help:      "Ingested offer records by outcome",
			},
			[]string{"outcome"},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "batch_duration_seconds",
				Help:      "Duration of ingestion batches in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		reviews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "review",
				Name:      "actions_total",
				Help:      "Review commands by action and result",
			},
			[]string{"action", "result"},
		),
		topScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "matching",
				Name:      "top_candidate_score",
				Help:      "Score of the best candidate proposed for each offer",
				Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.88, 0.95, 1.0, 1.1, 1.2},
			},
		),
	}

	registerer.MustRegister(m.ingested, m.batchDuration, m.reviews, m.topScore)
	return m
}

// RecordIngested counts one record; outcome is the offer status or "failed".
func (m *Metrics) RecordIngested(outcome string) {
	if m == nil {
		return
	}
	m.ingested.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveBatch(started time.Time) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveTopScore(score float64) {
	if m == nil {
		return
	}
	m.topScore.Observe(score)
}

// RecordReview counts a review command. err decides the result label.
func (m *Metrics) RecordReview(action string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reviews.WithLabelValues(action, result).Inc()
}
