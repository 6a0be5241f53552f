package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	phaseRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_pipeline_phase_runs_total",
			Help: "Total number of pipeline phase runs, partitioned by outcome.",
		},
		[]string{"phase", "outcome"},
	)
	phaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forge_pipeline_phase_duration_seconds",
			Help:    "Histogram of pipeline phase durations.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. 256s
		},
		[]string{"phase"},
	)
)

func recordPhaseOutcome(phase, outcome string) {
	phaseRunsTotal.WithLabelValues(phase, outcome).Inc()
}

func recordPhaseDuration(phase string, d time.Duration) {
	phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}
