// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records operational counters for the storefront service.
type Collector struct {
	httpRequests  *prometheus.CounterVec
	resolutions   *prometheus.CounterVec
	contentCalls  *prometheus.CounterVec
	contentErrors prometheus.Counter
	rateLimited   *prometheus.CounterVec
	httpLatency   prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_tenant_resolutions_total",
			Help: "Store resolution outcomes by addressing source.",
		}, []string{"source"}),
		contentCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_content_requests_total",
			Help: "Content API requests by collection and status code.",
		}, []string{"collection", "status_code"}),
		contentErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_content_errors_total",
			Help: "Content API requests that failed before a response arrived.",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_rate_limited_total",
			Help: "Requests rejected by the per-action rate limiter.",
		}, []string{"action"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_http_latency_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.resolutions,
		c.contentCalls,
		c.contentErrors,
		c.rateLimited,
		c.httpLatency,
	)

	return c
}

// RecordRequest records a finished HTTP request.
func (c *Collector) RecordRequest(statusCode int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(elapsed.Seconds())
}

// RecordResolution records a store resolution outcome.
func (c *Collector) RecordResolution(source string) {
	c.resolutions.WithLabelValues(source).Inc()
}

// RecordContentCall records the outcome of one content API request.
// A negative statusCode means the request failed before a response arrived.
func (c *Collector) RecordContentCall(collection string, statusCode int, err error) {
	if err != nil && statusCode <= 0 {
		c.contentErrors.Inc()
		return
	}
	c.contentCalls.WithLabelValues(collection, strconv.Itoa(statusCode)).Inc()
}

// RecordRateLimited records a request rejected by the rate limiter.
func (c *Collector) RecordRateLimited(action string) {
	c.rateLimited.WithLabelValues(action).Inc()
}

// Middleware counts responses and observes latency for every request.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		c.RecordRequest(ww.Status(), time.Since(start))
	})
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
