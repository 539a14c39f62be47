package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instrumentation for the API server.
// Each server instance carries its own registry so tests can build
// servers without colliding on the default registry.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
	authAttempts    *prometheus.CounterVec
	noteOperations  *prometheus.CounterVec
}

// NewMetrics creates the metric set on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		activeRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_requests",
				Help: "Current number of active HTTP requests",
			},
		),
		authAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_attempts_total",
				Help: "Total number of authentication attempts",
			},
			[]string{"status", "type"}, // success/failure, register/login/refresh
		),
		noteOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notes_operations_total",
				Help: "Total number of note operations",
			},
			[]string{"operation"}, // create, update, delete, share, publish
		),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request count, duration, and in-flight gauge.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.activeRequests.Inc()
		defer m.activeRequests.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Use the route pattern, not the raw path, to keep label
		// cardinality bounded.
		path := r.URL.Path
		if rctx := chiRouteContext(r); rctx != "" {
			path = rctx
		}

		m.requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// chiRouteContext returns the matched chi route pattern, if any.
func chiRouteContext(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// TrackAuthAttempt records an authentication attempt outcome.
func (m *Metrics) TrackAuthAttempt(status, authType string) {
	m.authAttempts.WithLabelValues(status, authType).Inc()
}

// TrackNoteOperation increments the notes operation counter.
func (m *Metrics) TrackNoteOperation(operation string) {
	m.noteOperations.WithLabelValues(operation).Inc()
}
