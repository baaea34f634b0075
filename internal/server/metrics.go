package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the server's instruments on a private registry so parallel
// test servers never trip duplicate registration.
type metrics struct {
	registry *prometheus.Registry

	predictions     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	upstreamFetches prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &metrics{
		registry: reg,
		predictions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchup",
			Subsystem: "server",
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome",
		}, []string{"outcome"}),
		requestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "matchup",
			Subsystem: "server",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route, method and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		upstreamFetches: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "matchup",
			Subsystem: "server",
			Name:      "upstream_fetches_total",
			Help:      "Completed team fetches against the FTCScout API",
		}),
	}
}

// handler serves the registry in the Prometheus text format.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument records one duration sample per request, labeled with the
// matched chi route.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
