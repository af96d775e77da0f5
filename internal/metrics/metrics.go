// Package metrics provides Prometheus metrics for CopyCheck
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copycheck_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copycheck_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// SubmissionsScanned counts scanned submissions by severity band
	SubmissionsScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copycheck_submissions_scanned_total",
			Help: "Total number of submissions scanned against their scope",
		},
		[]string{"severity"},
	)

	// ScanDuration measures one corpus scan
	ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "copycheck_scan_duration_seconds",
			Help:    "Corpus scan duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	// CompareRuns counts all-pairs comparison runs
	CompareRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copycheck_compare_runs_total",
			Help: "Total number of all-pairs comparison runs",
		},
		[]string{"status"},
	)

	// CompareDuration measures one all-pairs comparison
	CompareDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "copycheck_compare_duration_seconds",
			Help:    "All-pairs comparison duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		},
	)

	// FlaggedPairs counts pairs scoring above the report threshold
	FlaggedPairs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "copycheck_flagged_pairs_total",
			Help: "Total number of pairs above the comparison threshold",
		},
	)

	// ExtractionFallbacks counts uploads whose text came from OCR or was empty
	ExtractionFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copycheck_extraction_fallbacks_total",
			Help: "Total number of uploads that fell back from direct extraction",
		},
		[]string{"result"},
	)

	registerOnce sync.Once
)

// InitPrometheus registers all collectors with the default registry
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCount,
			RequestDuration,
			SubmissionsScanned,
			ScanDuration,
			CompareRuns,
			CompareDuration,
			FlaggedPairs,
			ExtractionFallbacks,
		)
	})
}
