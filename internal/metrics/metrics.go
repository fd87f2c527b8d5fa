package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staycation_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "staycation_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	BookingTransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staycation_booking_transactions_total",
		Help: "Booking create/update transaction outcomes",
	}, []string{"operation", "outcome"})

	DashboardBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "staycation_dashboard_build_duration_seconds",
		Help:    "Time to run all dashboard aggregate queries",
		Buckets: prometheus.DefBuckets,
	})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staycation_booking_notifications_total",
		Help: "Booking notification emails by outcome",
	}, []string{"outcome"})

	StatusNormalizationRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "staycation_status_normalization_runs_total",
		Help: "Total booking status normalization runs",
	})

	StatusNormalizationFixesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "staycation_status_normalization_fixes_total",
		Help: "Booking rows whose status was rewritten to canonical form",
	})
)
