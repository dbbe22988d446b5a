package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	registrations      *prometheus.CounterVec
	registrationRetry  prometheus.Counter
	availabilityChecks *prometheus.CounterVec
	duration           *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dmcatalog_registrations_total",
			Help: "Total number of data registrations, by result",
		}, []string{"result"}),

		registrationRetry: f.NewCounter(prometheus.CounterOpts{
			Name: "dmcatalog_registration_retries_total",
			Help: "Total number of registrations retried because a concurrent one took the version",
		}),

		availabilityChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dmcatalog_availability_checks_total",
			Help: "Total number of availability checks, by whether all partitions are available",
		}, []string{"complete"}),

		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dmcatalog_operation_duration_seconds",
			Help:    "Time taken by catalog operations",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"operation", "result"}),
	}
}
