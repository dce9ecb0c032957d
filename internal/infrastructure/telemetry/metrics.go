package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Cache lookup results
const (
	CacheHit   = "hit"
	CacheStale = "stale"
	CacheMiss  = "miss"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	BackendRequests  *prometheus.CounterVec
	BackendDuration  *prometheus.HistogramVec
	BackendRetries   *prometheus.CounterVec
	CacheRequests    *prometheus.CounterVec
	CacheInvalidated *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	RateLimited      prometheus.Counter
	CheckoutEvents   *prometheus.CounterVec
	SearchSuperseded prometheus.Counter
}

// NewMetrics creates the collectors on a private registry together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Requests sent to the catalog backend",
		}, []string{"method", "resource", "status"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of backend requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "resource"}),
		BackendRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_retries_total",
			Help:      "Mutation retries sent to the backend",
		}, []string{"method", "resource"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Query cache lookups by result",
		}, []string{"group", "result"}),
		CacheInvalidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Query cache group invalidations",
		}, []string{"group"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		CheckoutEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_events_total",
			Help:      "Checkout flow transitions and outcomes",
		}, []string{"event"}),
		SearchSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_superseded_total",
			Help:      "Debounced searches dropped in favour of a newer one",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.BackendRequests,
		m.BackendDuration,
		m.BackendRetries,
		m.CacheRequests,
		m.CacheInvalidated,
		m.HTTPRequests,
		m.HTTPDuration,
		m.RateLimited,
		m.CheckoutEvents,
		m.SearchSuperseded,
	)
	return m
}

// Registry exposes the registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveBackend(method, resource string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.BackendRequests.WithLabelValues(method, resource, label).Inc()
	m.BackendDuration.WithLabelValues(method, resource).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveBackendRetry(method, resource string) {
	if m == nil {
		return
	}
	m.BackendRetries.WithLabelValues(method, resource).Inc()
}

func (m *Metrics) ObserveCache(group, result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(group, result).Inc()
}

func (m *Metrics) ObserveInvalidation(group string) {
	if m == nil {
		return
	}
	m.CacheInvalidated.WithLabelValues(group).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

func (m *Metrics) ObserveCheckout(event string) {
	if m == nil {
		return
	}
	m.CheckoutEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveSuperseded() {
	if m == nil {
		return
	}
	m.SearchSuperseded.Inc()
}
