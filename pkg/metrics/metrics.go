package metrics

import (
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Record methods are no-ops on a nil *Registry so engines can run without
// metrics wired in.

// RecordPlacementAttempt counts one placement attempt by outcome
func (r *Registry) RecordPlacementAttempt(outcome string) {
	if r == nil {
		return
	}
	r.PlacementAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordPairPlaced records an inserted pair with the lengths of its two paths
func (r *Registry) RecordPairPlaced(path1Len, path2Len int) {
	if r == nil {
		return
	}
	r.PlacementAttemptsTotal.WithLabelValues(OutcomePlaced).Inc()
	r.PairsPlacedTotal.Inc()
	r.PlacementPathLength.Observe(float64(path1Len))
	r.PlacementPathLength.Observe(float64(path2Len))
}

// ObservePlacement records the wall time of a doping batch
func (r *Registry) ObservePlacement(duration time.Duration) {
	if r == nil {
		return
	}
	r.PlacementDuration.Observe(duration.Seconds())
}

// RecordTrial counts a trial move; pathLen is only observed for applied moves
func (r *Registry) RecordTrial(kind, outcome string, pathLen int) {
	if r == nil {
		return
	}
	r.DiffusionTrialsTotal.WithLabelValues(kind, outcome).Inc()
	if outcome == OutcomeApplied {
		r.DiffusionPathLength.Observe(float64(pathLen))
	}
}

// RecordVoidSample counts a sampled site that was water
func (r *Registry) RecordVoidSample() {
	if r == nil {
		return
	}
	r.DiffusionVoidSamples.Inc()
}

// ObserveDiffusion records the wall time of a diffusion run
func (r *Registry) ObserveDiffusion(duration time.Duration) {
	if r == nil {
		return
	}
	r.DiffusionRunDuration.Observe(duration.Seconds())
}

// RecordReplica records a finished ensemble replica
func (r *Registry) RecordReplica(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.EnsembleReplicasTotal.WithLabelValues(status).Inc()
	r.EnsembleReplicaDuration.Observe(duration.Seconds())
}

// UpdateLattice sets the lattice gauges
func (r *Registry) UpdateLattice(sites, bonds, anions, cations int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LatticeSites.Set(float64(sites))
	r.LatticeBonds.Set(float64(bonds))
	r.LatticeIons.WithLabelValues("anion").Set(float64(anions))
	r.LatticeIons.WithLabelValues("cation").Set(float64(cations))
}

// UpdateSystemMetrics samples process runtime statistics
func (r *Registry) UpdateSystemMetrics(start time.Time) {
	if r == nil {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.UptimeSeconds.Set(time.Since(start).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}

// WriteTextfile dumps every metric in the Prometheus text format, for the
// node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
