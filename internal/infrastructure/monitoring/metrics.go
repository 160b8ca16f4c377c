// Package monitoring provides Prometheus metrics and OpenTelemetry tracing
package monitoring

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

// Cache results
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Analysis metrics
	analysesTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	metricLevels     *prometheus.CounterVec
	cacheOperations  *prometheus.CounterVec
	exportsTotal     *prometheus.CounterVec

	// Catalog metrics
	reloadsTotal   *prometheus.CounterVec
	catalogVersion *prometheus.GaugeVec
	catalogSize    *prometheus.GaugeVec
}

// NewMetricsCollector creates a collector backed by its own registry, so
// tests and multiple servers in one process do not collide
func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsCollector{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patisserie_analyses_total",
				Help: "Total number of recipe analyses computed",
			},
			[]string{"kind"},
		),
		analysisDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "patisserie_analysis_duration_seconds",
				Help:    "Time spent computing an analysis",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		metricLevels: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patisserie_metric_levels_total",
				Help: "Validation grades by metric and level",
			},
			[]string{"metric", "level"},
		),
		cacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patisserie_analysis_cache_total",
				Help: "Analysis cache lookups by result",
			},
			[]string{"result"},
		),
		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patisserie_exports_total",
				Help: "Exported analysis sheets by target and status",
			},
			[]string{"target", "status"},
		),

		reloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patisserie_catalog_reloads_total",
				Help: "Catalog reloads by table and status",
			},
			[]string{"table", "status"},
		),
		catalogVersion: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "patisserie_catalog_version",
				Help: "Current snapshot version per table",
			},
			[]string{"table"},
		),
		catalogSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "patisserie_catalog_entries",
				Help: "Entries in the current snapshot per table",
			},
			[]string{"table"},
		),
	}
}

// Registry exposes the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// HTTPMiddleware records request counts and latency per chi route pattern
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// AnalysisComputed records a fresh analysis of the given kind
func (m *MetricsCollector) AnalysisComputed(kind string, duration time.Duration) {
	m.analysesTotal.WithLabelValues(kind).Inc()
	m.analysisDuration.Observe(duration.Seconds())
}

// MetricGraded records one validation grade
func (m *MetricsCollector) MetricGraded(metric, level string) {
	m.metricLevels.WithLabelValues(metric, level).Inc()
}

// CacheOperation records an analysis cache lookup
func (m *MetricsCollector) CacheOperation(result string) {
	m.cacheOperations.WithLabelValues(result).Inc()
}

// Export records an exported sheet
func (m *MetricsCollector) Export(target string, err error) {
	m.exportsTotal.WithLabelValues(target, status(err)).Inc()
}

// CatalogReloaded records a reload attempt and, on success, the new snapshot
func (m *MetricsCollector) CatalogReloaded(table string, version int64, entries int, err error) {
	m.reloadsTotal.WithLabelValues(table, status(err)).Inc()
	if err == nil {
		m.catalogVersion.WithLabelValues(table).Set(float64(version))
		m.catalogSize.WithLabelValues(table).Set(float64(entries))
	}
}

// Handler returns the Prometheus metrics handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
