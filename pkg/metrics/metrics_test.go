package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObservePage(t *testing.T) {
	m := New("")
	m.ObservePage("depth", 400, 2, 150*time.Millisecond)
	m.ObservePage("depth", 10, 0, 50*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesIngested.WithLabelValues("depth")))
	assert.Equal(t, 410.0, testutil.ToFloat64(m.BucketsWritten.WithLabelValues("depth")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsSkipped.WithLabelValues("depth")))
}

func TestMetrics_HighWaterMarkAndErrors(t *testing.T) {
	m := New("test")
	m.SetHighWaterMark("swap", 1700000000)
	m.ObserveBackfillError("swap", "no_progress")

	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.HighWaterMark.WithLabelValues("swap")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackfillErrors.WithLabelValues("swap", "no_progress")))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePage("depth", 1, 0, time.Second)
		m.ObserveBackfillError("depth", "store")
		m.SetHighWaterMark("depth", 1)
		m.ObserveTick(time.Second)
		m.ObserveRequest("/health", 200, time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New("")
	m.ObserveRequest("/api/depth-history", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `midgardx_api_requests_total{code="200",route="/api/depth-history"} 1`)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New("")
		New("")
	})
}
