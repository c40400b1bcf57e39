package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wf_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Funnel

	LeadsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wf_leads_submitted_total",
			Help: "Lead form submissions, split by duplicate flag",
		},
		[]string{"duplicate"},
	)

	ShareEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wf_share_events_total",
			Help: "Share events recorded, by kind (click, intent, visit)",
		},
		[]string{"kind"},
	)

	ShareDuplicates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wf_share_duplicates_total",
			Help: "Share events dropped by the dedup window",
		},
	)

	PaymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wf_payments_recorded_total",
			Help: "Enrollment payments recorded, by method",
		},
		[]string{"method"},
	)

	CheckIns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wf_attendance_checkins_total",
			Help: "Attendance records moved to attended",
		},
	)

	// Audit

	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wf_audit_write_failures_total",
			Help: "Activity log inserts that failed and were dropped",
		},
	)
)
