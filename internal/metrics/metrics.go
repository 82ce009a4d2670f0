// Package metrics exposes Prometheus counters for the dispatch pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntentsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_intents_dispatched_total",
			Help: "Total number of intents routed to a task handler",
		},
		[]string{"intent"},
	)

	HandlerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_handler_failures_total",
			Help: "Total number of task handler failures by intent",
		},
		[]string{"intent"},
	)

	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_handler_duration_seconds",
			Help: "Duration of task handler execution in seconds",
		},
		[]string{"intent"},
	)
)
