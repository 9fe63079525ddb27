package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dd0wney/icedope/pkg/bondgraph"
	"github.com/dd0wney/icedope/pkg/defects"
	"github.com/dd0wney/icedope/pkg/logging"
	"github.com/dd0wney/icedope/pkg/metrics"
	"github.com/dd0wney/icedope/pkg/validation"
)

// Replica statuses reported to metrics.
const (
	StatusOK        = "ok"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// EnsembleConfig describes a batch of independent replicas.
type EnsembleConfig struct {
	Replicas int
	Workers  int
	// Percent is the doping level applied to every replica.
	Percent float64
	// Moves is the number of applied hops per replica after doping.
	Moves int
	// Engine carries the base seed and attempt budgets.
	Engine defects.Config
	// Progress, if set, is called once per finished replica with the number
	// of replicas finished so far. Calls are serialized.
	Progress func(done int, r ReplicaResult)
}

// ReplicaResult is the outcome of one replica. Graph is the replica's own
// copy and is populated even when Err is set.
type ReplicaResult struct {
	Replica  int
	Seed     uint64
	Graph    *bondgraph.Graph
	Place    defects.PlaceResult
	Diffuse  defects.RunResult
	Duration time.Duration
	Err      error
}

// Ensemble runs replicas of one input lattice concurrently.
type Ensemble struct {
	cfg     EnsembleConfig
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewEnsemble validates cfg and prepares a runner.
func NewEnsemble(cfg EnsembleConfig, logger logging.Logger, m *metrics.Registry) (*Ensemble, error) {
	v := validation.NewConfigValidator("Ensemble")
	v.MinInt("Replicas", cfg.Replicas, 1).
		RangeInt("Workers", cfg.Workers, 0, MaxWorkers).
		RangeFloat("Percent", cfg.Percent, 0, validation.MaxPercent).
		NonNegative("Moves", cfg.Moves)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Ensemble{
		cfg:     cfg,
		logger:  logger.With(logging.Component("ensemble")),
		metrics: m,
	}, nil
}

// ReplicaSeed derives the seed of replica i from the base seed. Seeds of
// neighbouring replicas are decorrelated by a splitmix64 finalizer.
func ReplicaSeed(base uint64, i int) uint64 {
	z := base + uint64(i+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Run dopes and diffuses cfg.Replicas clones of base. base itself is never
// modified. Results are indexed by replica; the returned error joins the
// errors of all failed replicas.
func (e *Ensemble) Run(ctx context.Context, base *bondgraph.Graph) ([]ReplicaResult, error) {
	pool, err := NewWorkerPool(e.cfg.Workers, e.logger)
	if err != nil {
		return nil, err
	}

	results := make([]ReplicaResult, e.cfg.Replicas)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		finished int
	)
	report := func(r ReplicaResult) {
		if e.cfg.Progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		finished++
		e.cfg.Progress(finished, r)
	}

	op := logging.StartTimer(e.logger, "ensemble finished",
		logging.Int("replicas", e.cfg.Replicas), logging.Int("workers", pool.Workers()))

	for i := range results {
		// Clone before handing off so workers never read the shared graph
		g := base.Clone()
		wg.Add(1)
		submitted := pool.Submit(func() {
			defer wg.Done()
			results[i] = e.runReplica(ctx, i, g)
			report(results[i])
		})
		if !submitted {
			wg.Done()
			results[i] = ReplicaResult{Replica: i, Graph: g, Err: errors.New("worker pool closed")}
			report(results[i])
		}
	}
	wg.Wait()
	pool.Close()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("replica %d: %w", r.Replica, r.Err))
		}
	}
	err = errors.Join(errs...)
	if err != nil {
		op.EndError(err)
	} else {
		op.End(logging.Count(len(results)))
	}
	return results, err
}

func (e *Ensemble) runReplica(ctx context.Context, i int, g *bondgraph.Graph) (res ReplicaResult) {
	seed := ReplicaSeed(e.cfg.Engine.Seed, i)
	res = ReplicaResult{Replica: i, Seed: seed, Graph: g}
	start := time.Now()
	logger := e.logger.With(logging.Replica(i), logging.Seed(seed))

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic: %v", r)
		}
		res.Duration = time.Since(start)
		status := StatusOK
		switch {
		case errors.Is(res.Err, context.Canceled), errors.Is(res.Err, context.DeadlineExceeded):
			status = StatusCancelled
		case res.Err != nil:
			status = StatusFailed
		}
		e.metrics.RecordReplica(status, res.Duration)
		if res.Err != nil {
			logger.Warn("replica failed", logging.Error(res.Err))
		} else {
			logger.Debug("replica done", logging.Latency(res.Duration))
		}
	}()

	cfg := e.cfg.Engine
	cfg.Seed = seed
	// doper and diffuser consume one stream, as a sequential run would
	opts := []defects.Option{
		defects.WithLogger(logger),
		defects.WithMetrics(e.metrics),
		defects.WithRand(defects.NewRand(seed)),
	}

	doper, err := defects.NewDoper(g, cfg, opts...)
	if err != nil {
		res.Err = err
		return res
	}
	if res.Place, err = doper.PlacePercent(ctx, e.cfg.Percent); err != nil {
		res.Err = err
		return res
	}

	if e.cfg.Moves > 0 {
		diffuser, err := defects.NewDiffuser(g, cfg, opts...)
		if err != nil {
			res.Err = err
			return res
		}
		if res.Diffuse, err = diffuser.Run(ctx, e.cfg.Moves); err != nil {
			res.Err = err
			return res
		}
	}

	res.Err = defects.Verify(g, nil)
	return res
}
