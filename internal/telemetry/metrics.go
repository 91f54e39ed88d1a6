// Package telemetry provides application-level observability for the Vitrine
// backend.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<VTR_TELEMETRY_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint returns data in the Prometheus text
// exposition format and is intended to be scraped by a Prometheus server.
// It is NOT served by the Gin router, so it stays off the public ingress and
// outside the rate-limiting middleware.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Upload gate accept/reject counters by category and rejection reason
//   - Audit trail write and retention counters
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/uploads/:category)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as stored file names.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Upload gate metrics. The reason label is drawn from a fixed set
// (bad_filename, type_not_allowed, too_large, signature_mismatch, other) so
// cardinality stays bounded.
var (
	UploadsAcceptedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_accepted_total",
			Help: "Uploads accepted by the gate, by category.",
		},
		[]string{"category"},
	)

	UploadsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_rejected_total",
			Help: "Uploads rejected by the gate, by category and rejection reason.",
		},
		[]string{"category", "reason"},
	)
)

// Audit trail metrics.
var (
	AuditRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_records_written_total",
			Help: "Audit records appended to the trail, by event type and severity.",
		},
		[]string{"event_type", "severity"},
	)

	AuditPartitionsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_partitions_deleted_total",
			Help: "Audit partition files deleted by retention or administrative purge.",
		},
	)
)
