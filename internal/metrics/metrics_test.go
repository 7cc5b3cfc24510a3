package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObservePage(10)
		m.ObserveUpstreamError(500)
		m.ObserveRefresh(OutcomeSuccess, time.Second)
		m.ObservePublished(1, 2, time.Now())
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Observations(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	m := New(reg)
	at := time.Unix(1700000000, 0)

	// Act
	m.ObservePage(50)
	m.ObservePage(3)
	m.ObserveUpstreamError(503)
	m.ObserveUpstreamError(0)
	m.ObserveRefresh(OutcomeSuccess, 2*time.Second)
	m.ObserveRefresh(OutcomePreserved, time.Second)
	m.ObservePublished(53, 4096, at)

	// Assert
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pagesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamErrors.WithLabelValues("503")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamErrors.WithLabelValues("0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshTotal.WithLabelValues(OutcomePreserved)))
	assert.Equal(t, 53.0, testutil.ToFloat64(m.items))
	assert.Equal(t, 4096.0, testutil.ToFloat64(m.documentBytes))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastSuccess))
	assert.Equal(t, 1, testutil.CollectAndCount(m.refreshDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := New(nil)
	m.ObservePage(1)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "catalog_upstream_pages_total 1")
	assert.Contains(t, string(body), "catalog_refresh_duration_seconds")
}
