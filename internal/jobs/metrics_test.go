package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	require.NoError(t, metrics.Track("analytics_warmup").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, metrics.Track("analytics_warmup").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("analytics_warmup", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("analytics_warmup", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues("analytics_warmup")))
}

func TestReportWarmed(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	metrics.ReportWarmed("sales")
	metrics.ReportWarmed("sales")
	metrics.ReportWarmed("")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.warmed.WithLabelValues("sales")))
}

func TestNilMetricsTrackerPassesErrorThrough(t *testing.T) {
	var metrics *Metrics
	boom := errors.New("boom")
	assert.ErrorIs(t, metrics.Track("x").End(boom), boom)
	metrics.ReportWarmed("sales")
}
