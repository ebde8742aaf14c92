package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts scan calls by terminal phase (limit_reached, exhausted, failed).
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invscan_scans_total",
			Help: "Total number of scan calls by terminal phase",
		},
		[]string{"phase"},
	)
	// WindowsLoaded counts row windows decoded from sources.
	WindowsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invscan_windows_loaded_total",
			Help: "Total number of row windows decoded",
		},
	)
	RowsExamined = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invscan_rows_examined_total",
			Help: "Total number of source rows examined",
		},
	)
	RowsMatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invscan_rows_matched_total",
			Help: "Total number of rows returned in pages",
		},
	)
	// ScanDuration is the latency of one scan call.
	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "invscan_scan_duration_seconds",
			Help:    "Scan call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invscan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invscan_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
