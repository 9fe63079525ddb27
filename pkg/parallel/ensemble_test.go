package parallel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dd0wney/icedope/pkg/bondgraph"
	"github.com/dd0wney/icedope/pkg/defects"
	"github.com/dd0wney/icedope/pkg/lattice"
	"github.com/dd0wney/icedope/pkg/metrics"
	"github.com/dd0wney/icedope/pkg/validation"
	dto "github.com/prometheus/client_model/go"
)

func diamond(t *testing.T) *bondgraph.Graph {
	t.Helper()
	l, err := lattice.Diamond(2)
	if err != nil {
		t.Fatalf("lattice.Diamond failed: %v", err)
	}
	return l.Graph
}

func runEnsemble(t *testing.T, base *bondgraph.Graph, cfg EnsembleConfig, m *metrics.Registry) ([]ReplicaResult, error) {
	t.Helper()
	e, err := NewEnsemble(cfg, nil, m)
	if err != nil {
		t.Fatalf("NewEnsemble failed: %v", err)
	}
	return e.Run(context.Background(), base)
}

func TestEnsemble_Run(t *testing.T) {
	base := diamond(t)
	orig := base.Clone()
	m := metrics.NewRegistry()

	cfg := EnsembleConfig{
		Replicas: 6,
		Workers:  3,
		Percent:  5, // 3 pairs on 64 sites
		Moves:    4,
		Engine:   defects.Config{Seed: 21},
	}
	results, err := runEnsemble(t, base, cfg, m)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !base.Equal(orig) {
		t.Error("base graph was modified")
	}
	if len(results) != 6 {
		t.Fatalf("Expected 6 results, got %d", len(results))
	}

	seeds := make(map[uint64]bool)
	for i, r := range results {
		if r.Replica != i {
			t.Errorf("results[%d].Replica = %d", i, r.Replica)
		}
		if r.Place.Placed != 3 || r.Diffuse.Applied != 4 {
			t.Errorf("replica %d: placed %d, applied %d", i, r.Place.Placed, r.Diffuse.Applied)
		}
		if census := r.Graph.Census(); census.Anion != 3 || census.Cation != 3 {
			t.Errorf("replica %d census = %+v", i, census)
		}
		seeds[r.Seed] = true
	}
	if len(seeds) != 6 {
		t.Errorf("replica seeds are not distinct: %v", seeds)
	}

	var metric dto.Metric
	if err := m.EnsembleReplicasTotal.WithLabelValues(StatusOK).Write(&metric); err != nil {
		t.Fatal(err)
	}
	if got := metric.Counter.GetValue(); got != 6 {
		t.Errorf("ok replicas = %v, want 6", got)
	}
}

func TestEnsemble_Deterministic(t *testing.T) {
	base := diamond(t)
	cfg := EnsembleConfig{Replicas: 4, Workers: 4, Percent: 3, Moves: 3, Engine: defects.Config{Seed: 5}}

	first, err := runEnsemble(t, base, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	// a different worker count must not change any replica
	cfg.Workers = 1
	second, err := runEnsemble(t, base, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := range first {
		if !first[i].Graph.Equal(second[i].Graph) {
			t.Errorf("replica %d differs between runs", i)
		}
	}
}

func TestEnsemble_ReplicaFailure(t *testing.T) {
	base := diamond(t)
	cfg := EnsembleConfig{
		Replicas: 3,
		Workers:  2,
		Percent:  5,
		Engine:   defects.Config{Seed: 1, MaxAttempts: 1},
	}
	results, err := runEnsemble(t, base, cfg, nil)
	if !errors.Is(err, defects.ErrAttemptsExhausted) {
		t.Fatalf("Run() error = %v, want ErrAttemptsExhausted", err)
	}
	for _, r := range results {
		if r.Err == nil {
			t.Errorf("replica %d should have failed", r.Replica)
		}
		if r.Graph == nil {
			t.Errorf("replica %d lost its graph", r.Replica)
		}
	}
}

func TestEnsemble_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := metrics.NewRegistry()
	e, err := NewEnsemble(EnsembleConfig{Replicas: 2, Percent: 5}, nil, m)
	if err != nil {
		t.Fatal(err)
	}
	_, err = e.Run(ctx, diamond(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}

	var metric dto.Metric
	if err := m.EnsembleReplicasTotal.WithLabelValues(StatusCancelled).Write(&metric); err != nil {
		t.Fatal(err)
	}
	if got := metric.Counter.GetValue(); got != 2 {
		t.Errorf("cancelled replicas = %v, want 2", got)
	}
}

func TestNewEnsemble_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		cfg   EnsembleConfig
		field string
	}{
		{"zero replicas", EnsembleConfig{Replicas: 0}, "Ensemble.Replicas"},
		{"negative moves", EnsembleConfig{Replicas: 1, Moves: -1}, "Ensemble.Moves"},
		{"percent too high", EnsembleConfig{Replicas: 1, Percent: 75}, "Ensemble.Percent"},
		{"negative percent", EnsembleConfig{Replicas: 1, Percent: -1}, "Ensemble.Percent"},
		{"too many workers", EnsembleConfig{Replicas: 1, Workers: MaxWorkers + 1}, "Ensemble.Workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEnsemble(tt.cfg, nil, nil)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, validation.ErrInvalid) {
				t.Errorf("Expected ErrInvalid in chain, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestEnsemble_Progress(t *testing.T) {
	var (
		calls []int
		seen  = make(map[int]bool)
	)
	cfg := EnsembleConfig{
		Replicas: 5,
		Workers:  3,
		Percent:  3,
		Moves:    2,
		Engine:   defects.Config{Seed: 8},
		Progress: func(done int, r ReplicaResult) {
			// serialized by Run, so no lock here
			calls = append(calls, done)
			seen[r.Replica] = true
		},
	}
	if _, err := runEnsemble(t, diamond(t), cfg, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(calls) != 5 {
		t.Fatalf("Progress called %d times, want 5", len(calls))
	}
	for i, done := range calls {
		if done != i+1 {
			t.Errorf("call %d reported %d finished, want %d", i, done, i+1)
		}
	}
	if len(seen) != 5 {
		t.Errorf("Progress saw replicas %v, want all 5", seen)
	}
}

func TestReplicaSeed(t *testing.T) {
	if ReplicaSeed(1, 0) == ReplicaSeed(1, 1) {
		t.Error("neighbouring replicas share a seed")
	}
	if ReplicaSeed(1, 3) != ReplicaSeed(1, 3) {
		t.Error("ReplicaSeed is not a pure function")
	}
	if ReplicaSeed(1, 0) == ReplicaSeed(2, 0) {
		t.Error("base seed is ignored")
	}
}
