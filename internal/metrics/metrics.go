// Package metrics exposes Prometheus collectors for the notification pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeDelivered  = "delivered"
	OutcomeRetry      = "retry"
	OutcomeFailed     = "failed"
	OutcomeSkipped    = "skipped"
	OutcomeEnqueued   = "enqueued"
	OutcomeDuplicate  = "duplicate"
	OutcomeInvalid    = "invalid"
	OutcomeError      = "error"
	OutcomeDeadLetter = "dead_lettered"
)

var (
	Enqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_enqueue_total",
		Help: "Enqueue requests by notification type and outcome.",
	}, []string{"type", "outcome"})

	Dispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_dispatch_total",
		Help: "Delivery attempts by channel and outcome.",
	}, []string{"channel", "outcome"})

	DispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notifications_dispatch_duration_seconds",
		Help:    "Duration of mail provider calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})

	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_events_consumed_total",
		Help: "Inbound order events by source and outcome.",
	}, []string{"source", "outcome"})

	SweepBatch = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notifications_sweep_batch_size",
		Help: "Number of pending notifications picked by the last sweep.",
	})

	StaleReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_stale_claims_released_total",
		Help: "IN_PROGRESS notifications released after their claim expired.",
	})
)
