// Package metrics provides Prometheus metrics for the estimating service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EstimatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sumrai_estimates_total",
			Help: "Total number of estimates computed",
		},
		[]string{"source"},
	)

	EstimateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sumrai_estimate_duration_seconds",
			Help:    "Time taken to compute an estimate",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	EstimateWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sumrai_estimate_warnings_total",
			Help: "Total number of recovered failures reported with estimates",
		},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sumrai_exports_total",
			Help: "Total number of estimate exports",
		},
		[]string{"format"},
	)

	CatalogVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sumrai_catalog_version",
			Help: "Version stamp of the active catalog",
		},
	)

	CatalogUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sumrai_catalog_updates_total",
			Help: "Total number of catalog replace attempts",
		},
		[]string{"status"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sumrai_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sumrai_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// RecordEstimate records one computed estimate.
func RecordEstimate(source string, warnings int, duration time.Duration) {
	EstimatesTotal.WithLabelValues(source).Inc()
	EstimateDuration.Observe(duration.Seconds())
	if warnings > 0 {
		EstimateWarnings.Add(float64(warnings))
	}
}

// RecordCatalogUpdate records a catalog replace attempt and, on success, the
// new version.
func RecordCatalogUpdate(version int64, err error) {
	if err != nil {
		CatalogUpdates.WithLabelValues("error").Inc()
		return
	}
	CatalogUpdates.WithLabelValues("ok").Inc()
	CatalogVersion.Set(float64(version))
}
