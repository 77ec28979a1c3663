// Package metrics exposes Prometheus counters for the assignment engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Classifications  *prometheus.CounterVec
	Outcomes         *prometheus.CounterVec
	Notifications    *prometheus.CounterVec
	DispatchDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civix",
			Subsystem: "engine",
			Name:      "classifications_total",
			Help:      "Issue classifications by method.",
		}, []string{"method"}),
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civix",
			Subsystem: "engine",
			Name:      "outcomes_total",
			Help:      "Assignment decisions by outcome kind.",
		}, []string{"outcome"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civix",
			Subsystem: "engine",
			Name:      "notifications_total",
			Help:      "Admin notifications emitted by type.",
		}, []string{"type"}),
		DispatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "civix",
			Subsystem: "engine",
			Name:      "dispatch_duration_seconds",
			Help:      "End-to-end per-issue dispatch latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
