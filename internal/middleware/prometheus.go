package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// PrometheusMetrics collects HTTP and ingest pipeline metrics.
type PrometheusMetrics struct {
	logger *logrus.Logger

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	samplesIngestedTotal *prometheus.CounterVec
	ingestDuration       prometheus.Histogram
	catalogSections      *prometheus.GaugeVec
}

// NewPrometheusMetrics registers the collectors under namespace
// (default "apk_metadata").
func NewPrometheusMetrics(logger *logrus.Logger, namespace string) *PrometheusMetrics {
	if namespace == "" {
		namespace = "apk_metadata"
	}

	return &PrometheusMetrics{
		logger: logger,

		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latencies in seconds",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method", "path"},
		),
		samplesIngestedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "samples_ingested_total",
				Help:      "Sample reports ingested, by outcome",
			},
			[]string{"status"}, // stored, invalid, failed
		),
		ingestDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingest_duration_seconds",
				Help:      "Time spent ingesting one sample report",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		catalogSections: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_sections",
				Help:      "Detector sections per pattern catalog",
			},
			[]string{"category"},
		),
	}
}

// HTTPMiddleware records request counts and latencies per route.
func (pm *PrometheusMetrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		pm.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		pm.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the metrics endpoint.
func (pm *PrometheusMetrics) Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// ObserveIngest records one ingest attempt. Nil-safe so the pipeline
// works without metrics wired.
func (pm *PrometheusMetrics) ObserveIngest(status string, duration time.Duration) {
	if pm == nil {
		return
	}
	pm.samplesIngestedTotal.WithLabelValues(status).Inc()
	pm.ingestDuration.Observe(duration.Seconds())
}

// SetCatalogSections publishes the current section count of a catalog.
func (pm *PrometheusMetrics) SetCatalogSections(category string, n int) {
	if pm == nil {
		return
	}
	pm.catalogSections.WithLabelValues(category).Set(float64(n))
}
