package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBackend("GET", "spare-part", 200, time.Millisecond)
		m.ObserveBackendRetry("POST", "order")
		m.ObserveCache("brands", CacheHit)
		m.ObserveInvalidation("brands")
		m.ObserveHTTP("GET", "/api/v1/cart", 200, time.Millisecond)
		m.ObserveRateLimited()
		m.ObserveCheckout("order_created")
		m.ObserveSuperseded()
	})
}

func TestMetrics_Records(t *testing.T) {
	m := NewMetrics()

	m.ObserveBackend("GET", "spare-part", 200, 10*time.Millisecond)
	m.ObserveBackend("POST", "order", 0, time.Second)
	m.ObserveCache("brands", CacheMiss)
	m.ObserveCache("brands", CacheHit)
	m.ObserveCache("brands", CacheHit)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("GET", "spare-part", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("POST", "order", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("brands", CacheHit)))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveRateLimited()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_rate_limited_total 1")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
