package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEnsembleMetrics() {
	r.EnsembleReplicasTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "icedope_ensemble_replicas_total",
			Help: "Ensemble replicas by final status",
		},
		[]string{"status"},
	)

	r.EnsembleReplicaDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "icedope_ensemble_replica_duration_seconds",
			Help:    "Wall time of one replica in seconds",
			Buckets: []float64{0.01, 0.1, 1.0, 10.0, 60.0, 600.0},
		},
	)
}
