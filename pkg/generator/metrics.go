package generator

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	candidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matroids_candidates_total",
		Help: "Single-element extensions (one per linear subclass) submitted to the canonicity test.",
	}, []string{"level"})

	acceptedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matroids_accepted_total",
		Help: "Matroids kept per level and construction path.",
	}, []string{"level", "path"})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matroids_rejected_total",
		Help: "Extensions discarded as non-canonical.",
	}, []string{"level"})

	levelDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matroids_level_duration_seconds",
		Help:    "Time spent building one level.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 12),
	}, []string{"level"})
)

// Label of a level: "nXXrYY"
func levelLabel(n, r int) string {
	return fmt.Sprintf("n%02dr%02d", n, r)
}

// WriteMetrics dumps the default registry in the text exposition format, for the node-exporter textfile collector
func WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
