package metrics

import (
	"net/http"

	"github.com/54ba/midostore-sub004/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's custom Prometheus metrics.
type MetricsManager struct {
	Registry *prometheus.Registry

	CatalogQueriesTotal       *prometheus.CounterVec
	InteractionsRecordedTotal *prometheus.CounterVec
	CacheHitsTotal            *prometheus.CounterVec
	CacheMissesTotal          *prometheus.CounterVec
	HTTPErrorsTotal           *prometheus.CounterVec
	HTTPRequestLatency        *prometheus.HistogramVec
}

// NewMetricsManager initializes and registers the custom metrics on a
// dedicated registry, plus the standard Go and process collectors.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()

	catalogQueriesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "catalog_queries_total",
		Help:      "Total number of catalog queries by operation.",
	}, []string{"operation"})
	interactionsRecordedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "interactions_recorded_total",
		Help:      "Total number of buyer interactions recorded by type.",
	}, []string{"type"})
	cacheHitsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "cache_hits_total",
		Help:      "Total number of cache hits by key group.",
	}, []string{"key"})
	cacheMissesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "cache_misses_total",
		Help:      "Total number of cache misses by key group.",
	}, []string{"key"})
	httpErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "http_errors_total",
		Help:      "Total number of HTTP error responses by route and status.",
	}, []string{"route", "status"})
	httpRequestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "http_request_latency_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		catalogQueriesTotal,
		interactionsRecordedTotal,
		cacheHitsTotal,
		cacheMissesTotal,
		httpErrorsTotal,
		httpRequestLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:                  registry,
		CatalogQueriesTotal:       catalogQueriesTotal,
		InteractionsRecordedTotal: interactionsRecordedTotal,
		CacheHitsTotal:            cacheHitsTotal,
		CacheMissesTotal:          cacheMissesTotal,
		HTTPErrorsTotal:           httpErrorsTotal,
		HTTPRequestLatency:        httpRequestLatency,
	}
}

// StartMetricsServer starts an HTTP server exposing /metrics. An empty
// port disables the server.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting",
		zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
