// Package metrics holds Prometheus instruments that are used across the
// enquiry service.  All collectors are registered with the global registry,
// so importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes recorded by BookingSubmissionsTotal.
const (
	OutcomeStored    = "stored"
	OutcomeMalformed = "malformed"
	OutcomePrecheck  = "precheck"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

var (
	BookingSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enquiry_booking_submissions_total",
			Help: "Booking submissions received, by outcome.",
		}, []string{"outcome"})

	BookingsStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "enquiry_bookings_stored",
			Help: "Bookings currently held by the in-memory repository.",
		})

	BookingLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enquiry_booking_lookups_total",
			Help: "Lookups by reference number against the booking cache, by result.",
		}, []string{"result"})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enquiry_http_requests_total",
			Help: "HTTP requests served, by route pattern, method, and status code.",
		}, []string{"route", "method", "code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enquiry_http_request_duration_seconds",
			Help:    "HTTP request latency, by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"})
)

func init() {
	prometheus.MustRegister(
		BookingSubmissionsTotal,
		BookingsStored,
		BookingLookupsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
