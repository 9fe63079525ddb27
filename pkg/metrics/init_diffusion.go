package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDiffusionMetrics() {
	r.DiffusionTrialsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "icedope_diffusion_trials_total",
			Help: "Trial moves by ion kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	r.DiffusionVoidSamples = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "icedope_diffusion_void_samples_total",
			Help: "Sampled sites that turned out to be water",
		},
	)

	r.DiffusionPathLength = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "icedope_diffusion_path_length",
			Help:    "Bonds reversed per applied hop, excluding the hop bond",
			Buckets: pathBuckets,
		},
	)

	r.DiffusionRunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "icedope_diffusion_run_duration_seconds",
			Help:    "Wall time of a diffusion run in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 1.0, 10.0, 60.0},
		},
	)
}
