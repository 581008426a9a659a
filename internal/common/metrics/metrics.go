// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_submissions_total",
			Help: "Total number of form submissions by outcome",
		},
		[]string{"outcome"},
	)

	RemoteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registration_remote_failures_total",
			Help: "Total number of remote sends that returned a transport error",
		},
	)

	StoreFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_store_failures_total",
			Help: "Total number of local store read or write failures",
		},
		[]string{"op"},
	)

	StorePending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "registration_store_pending_records",
			Help: "Records held in memory after a rejected write",
		},
	)

	SubmitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "registration_submit_duration_seconds",
			Help:    "Duration of accepted submissions in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
