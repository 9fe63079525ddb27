package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// pathBuckets covers hop counts from nearest neighbours up to a few cells.
var pathBuckets = []float64{1, 2, 3, 4, 6, 8, 12, 16, 24, 32, 64}

func (r *Registry) initPlacementMetrics() {
	r.PlacementAttemptsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "icedope_placement_attempts_total",
			Help: "Placement attempts by outcome",
		},
		[]string{"outcome"},
	)

	r.PairsPlacedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "icedope_pairs_placed_total",
			Help: "Total number of ion pairs inserted",
		},
	)

	r.PlacementPathLength = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "icedope_placement_path_length",
			Help:    "Bonds reversed per placement path",
			Buckets: pathBuckets,
		},
	)

	r.PlacementDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "icedope_placement_duration_seconds",
			Help:    "Wall time of a doping batch in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 1.0, 10.0, 60.0},
		},
	)
}
