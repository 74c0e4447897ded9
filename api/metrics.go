package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the HTTP collectors. Each server registers its own set so
// tests can build routers without clashing on the default registry.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	notFoundTotal   *prometheus.CounterVec
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	m := &metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		notFoundTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_not_found_total",
				Help: "Public requests answered with the not-found page, by route",
			},
			[]string{"route"},
		),
	}
	registerer.MustRegister(m.requestsTotal, m.requestDuration, m.notFoundTotal)
	return m
}

// instrument records request count and latency by chi route pattern
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(srw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(srw.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *metrics) recordNotFound(route string) {
	if m == nil {
		return
	}
	m.notFoundTotal.WithLabelValues(route).Inc()
}
