// Package metrics holds the Prometheus collectors exported at /metrics.
// All recording methods are safe on a nil *Metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "salesops"

// Metrics bundles the service's collectors
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	quotationNumbers  *prometheus.CounterVec
	documentsRendered *prometheus.CounterVec
	documentPages     prometheus.Histogram
	exportFailures    *prometheus.CounterVec
	sourceErrors      *prometheus.CounterVec
	cleanupDeleted    prometheus.Counter
}

// New registers every collector on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_inflight_requests",
			Help:      "Number of HTTP requests currently being served",
		}),
		quotationNumbers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotation_numbers_generated_total",
			Help:      "Quotation numbers handed out, by brand and whether the fallback sequence was used",
		}, []string{"brand", "fallback"}),
		documentsRendered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_rendered_total",
			Help:      "Quotation documents rendered, by format and outcome",
		}, []string{"format", "outcome"}),
		documentPages: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_pages",
			Help:      "Pages per rendered quotation document",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		exportFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_failures_total",
			Help:      "Failed exports, by format and stage",
		}, []string{"format", "stage"}),
		sourceErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_source_errors_total",
			Help:      "Product search failures, by source",
		}, []string{"source"}),
		cleanupDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_cleanup_deleted_total",
			Help:      "Expired export blobs removed by the cleanup job",
		}),
	}
}

// ObserveHTTP records one finished request
func (m *Metrics) ObserveHTTP(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "route": route, "status": strconv.Itoa(status)}
	m.httpRequestsTotal.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(seconds)
}

// InFlight adjusts the in-flight request gauge by delta
func (m *Metrics) InFlight(delta float64) {
	if m == nil {
		return
	}
	m.httpInFlight.Add(delta)
}

// QuotationNumberGenerated counts an allocated number
func (m *Metrics) QuotationNumberGenerated(brand string, fallback bool) {
	if m == nil {
		return
	}
	m.quotationNumbers.WithLabelValues(brand, strconv.FormatBool(fallback)).Inc()
}

// DocumentRendered counts a render attempt and, on success, its page count
func (m *Metrics) DocumentRendered(format string, pages int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.documentsRendered.WithLabelValues(format, "error").Inc()
		return
	}
	m.documentsRendered.WithLabelValues(format, "ok").Inc()
	if pages > 0 {
		m.documentPages.Observe(float64(pages))
	}
}

// ExportFailed counts an export that failed at stage
func (m *Metrics) ExportFailed(format, stage string) {
	if m == nil {
		return
	}
	m.exportFailures.WithLabelValues(format, stage).Inc()
}

// ProductSourceFailed counts a failed search against a product source
func (m *Metrics) ProductSourceFailed(source string) {
	if m == nil {
		return
	}
	m.sourceErrors.WithLabelValues(source).Inc()
}

// CleanupDeleted counts blobs removed by the cleanup job
func (m *Metrics) CleanupDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.cleanupDeleted.Add(float64(n))
}
