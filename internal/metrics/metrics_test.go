package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordIngested("matched")
	m.RecordIngested("matched")
	m.RecordIngested("failed")
	m.RecordReview("approve", nil)
	m.RecordReview("approve", errors.New("conflict"))
	m.ObserveTopScore(0.9)
	m.ObserveBatch(time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ingested.WithLabelValues("matched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ingested.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reviews.WithLabelValues("approve", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reviews.WithLabelValues("approve", "error")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "offer_match_matching_top_candidate_score")
	assert.Contains(t, names, "offer_match_ingest_batch_duration_seconds")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordIngested("new")
		m.RecordReview("reject", nil)
		m.ObserveTopScore(1)
		m.ObserveBatch(time.Now())
	})
}
