package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one server instance. Each
// instance owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests       *prometheus.CounterVec
	ProjectionRuns     *prometheus.CounterVec
	ProjectionDuration *prometheus.HistogramVec
	ProjectedDays      prometheus.Histogram
	RefreshDiscarded   prometheus.Counter
	LatestGeneration   prometheus.Gauge
	LatestEndTotal     prometheus.Gauge
}

// NewMetrics registers every collector on a fresh registry, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cashflow",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),

		ProjectionRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cashflow",
			Subsystem: "projection",
			Name:      "runs_total",
			Help:      "Projection runs by trigger (api, refresher) and outcome (ok, error).",
		}, []string{"trigger", "outcome"}),

		ProjectionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cashflow",
			Subsystem: "projection",
			Name:      "duration_seconds",
			Help:      "Wall time of a projection run including the store read.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"trigger"}),

		ProjectedDays: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cashflow",
			Subsystem: "projection",
			Name:      "horizon_days",
			Help:      "Number of days simulated per run.",
			Buckets:   []float64{7, 30, 60, 90, 180, 365},
		}),

		RefreshDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cashflow",
			Subsystem: "refresher",
			Name:      "discarded_total",
			Help:      "Background projections dropped because a newer edit superseded them.",
		}),

		LatestGeneration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cashflow",
			Subsystem: "refresher",
			Name:      "generation",
			Help:      "Input generation of the most recent published projection.",
		}),

		LatestEndTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cashflow",
			Subsystem: "refresher",
			Name:      "end_total",
			Help:      "Account total (card included) on the last day of the published projection.",
		}),
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRun records one projection run.
func (m *Metrics) ObserveRun(trigger string, days int, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ProjectionRuns.WithLabelValues(trigger, outcome).Inc()
	m.ProjectionDuration.WithLabelValues(trigger).Observe(elapsed.Seconds())
	if err == nil {
		m.ProjectedDays.Observe(float64(days))
	}
}

// Middleware counts requests by chi route pattern, so /api/entries/7 and
// /api/entries/8 share one series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}
