package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for placement attempts.
const (
	OutcomePlaced           = "placed"
	OutcomeIneligibleAnion  = "ineligible_anion"
	OutcomeIneligibleCation = "ineligible_cation"
	OutcomeNoPath           = "no_path"
	OutcomeNoSecondPath     = "no_second_path"
)

// Outcome labels for diffusion trials.
const (
	OutcomeApplied        = "applied"
	OutcomeNoWaterPartner = "no_water_partner"
	OutcomeNoHopPath      = "no_hop_path"
)

// Registry holds all metrics for one run (or one ensemble)
type Registry struct {
	// Lattice Metrics
	LatticeSites prometheus.Gauge
	LatticeBonds prometheus.Gauge
	LatticeIons  *prometheus.GaugeVec

	// Placement Metrics
	PlacementAttemptsTotal *prometheus.CounterVec
	PairsPlacedTotal       prometheus.Counter
	PlacementPathLength    prometheus.Histogram
	PlacementDuration      prometheus.Histogram

	// Diffusion Metrics
	DiffusionTrialsTotal *prometheus.CounterVec
	DiffusionVoidSamples prometheus.Counter
	DiffusionPathLength  prometheus.Histogram
	DiffusionRunDuration prometheus.Histogram

	// Ensemble Metrics
	EnsembleReplicasTotal   *prometheus.CounterVec
	EnsembleReplicaDuration prometheus.Histogram

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initLatticeMetrics()
	r.initPlacementMetrics()
	r.initDiffusionMetrics()
	r.initEnsembleMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
