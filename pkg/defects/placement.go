package defects

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/icedope/pkg/algorithms"
	"github.com/dd0wney/icedope/pkg/bondgraph"
	"github.com/dd0wney/icedope/pkg/logging"
	"github.com/dd0wney/icedope/pkg/metrics"
)

// Doper inserts anion/cation pairs into a bond graph by reversing two
// edge-disjoint homodromic paths between the chosen sites.
//
// A Doper is not safe for concurrent use; it is the single writer of its graph.
type Doper struct {
	engine
	g   *bondgraph.Graph
	reg *Registry
	cfg Config
}

// PlaceResult summarizes one doping batch.
type PlaceResult struct {
	Requested int
	Placed    int
	// Attempts counts candidate draws and abandoned path searches.
	Attempts   int
	Rejections map[string]int
	Pairs      []Pair
	// PathLengths holds the bond count of both paths of every placed pair.
	PathLengths []int
}

// NewDoper prepares g for doping. Every site must already be water or an ion.
func NewDoper(g *bondgraph.Graph, cfg Config, opts ...Option) (*Doper, error) {
	if err := checkClassified(g); err != nil {
		return nil, fmt.Errorf("new doper: %w", err)
	}
	cfg = cfg.withDefaults()
	return &Doper{
		engine: newEngine("doper", cfg.Seed, opts),
		g:      g,
		reg:    RegistryFromGraph(g),
		cfg:    cfg,
	}, nil
}

// Registry returns the live ion registry.
func (d *Doper) Registry() *Registry {
	return d.reg
}

// PairsForPercent converts a doping percentage into a pair count, truncating.
func PairsForPercent(sites int, percent float64) int {
	if percent <= 0 {
		return 0
	}
	return int(float64(sites) * percent / 100)
}

// PlacePercent inserts int(N*percent/100) pairs.
func (d *Doper) PlacePercent(ctx context.Context, percent float64) (PlaceResult, error) {
	return d.Place(ctx, PairsForPercent(d.g.NumSites(), percent))
}

// Place inserts the requested number of pairs. Pairs placed before an error
// stay in the graph and are reported in the result.
func (d *Doper) Place(ctx context.Context, pairs int) (PlaceResult, error) {
	res := PlaceResult{Requested: pairs, Rejections: make(map[string]int)}
	if pairs <= 0 {
		return res, nil
	}
	if d.g.NumSites() < 2 {
		return res, fmt.Errorf("place: %d sites cannot host a pair: %w", d.g.NumSites(), ErrAttemptsExhausted)
	}

	start := time.Now()
	defer func() { d.metrics.ObservePlacement(time.Since(start)) }()

	for res.Placed < pairs {
		pair, lens, attempts, err := d.placeOne(ctx, &res)
		res.Attempts += attempts
		if err != nil {
			d.logger.Warn("doping stopped",
				logging.Int("placed", res.Placed), logging.Int("requested", pairs), logging.Error(err))
			return res, err
		}
		res.Placed++
		res.Pairs = append(res.Pairs, pair)
		res.PathLengths = append(res.PathLengths, lens[0], lens[1])
		d.logger.Info("pair placed", append(logging.Pair(pair.Anion, pair.Cation),
			logging.Int("remaining", pairs-res.Placed), logging.Attempt(attempts))...)
	}
	d.metrics.UpdateLattice(d.g.NumSites(), d.g.NumBonds(), len(d.reg.anions), len(d.reg.cations))
	return res, nil
}

// placeOne runs the sample/search/invert loop for a single pair.
func (d *Doper) placeOne(ctx context.Context, res *PlaceResult) (Pair, [2]int, int, error) {
	n := d.g.NumSites()
	attempts := 0
	reject := func(reason string) {
		res.Rejections[reason]++
		d.metrics.RecordPlacementAttempt(reason)
	}

	for {
		if err := ctx.Err(); err != nil {
			return Pair{}, [2]int{}, attempts, err
		}

		anion := -1
		for anion < 0 {
			if attempts >= d.cfg.MaxAttempts {
				return Pair{}, [2]int{}, attempts, fmt.Errorf("place pair after %d attempts: no anion site: %w", attempts, ErrAttemptsExhausted)
			}
			attempts++
			if site := d.rng.IntN(n); IsAnionizable(d.g, site) {
				anion = site
			} else {
				reject(metrics.OutcomeIneligibleAnion)
			}
		}

		cation := -1
		for cation < 0 {
			if attempts >= d.cfg.MaxAttempts {
				return Pair{}, [2]int{}, attempts, fmt.Errorf("place pair after %d attempts: no cation site: %w", attempts, ErrAttemptsExhausted)
			}
			attempts++
			if site := d.rng.IntN(n); site != anion && IsCationizable(d.g, site) {
				cation = site
			} else {
				reject(metrics.OutcomeIneligibleCation)
			}
		}

		path1, ok := algorithms.ShortestPath(d.g, anion, cation)
		if !ok {
			reject(metrics.OutcomeNoPath)
			d.logger.Debug("no path", logging.Pair(anion, cation)...)
			continue
		}
		edges1 := bondgraph.PathEdges(path1)

		path2, ok := algorithms.ShortestPath(d.g.Without(edges1...), anion, cation)
		if !ok {
			reject(metrics.OutcomeNoSecondPath)
			d.logger.Debug("no second path", append(logging.Pair(anion, cation), logging.PathLen(path1.Len()))...)
			continue
		}
		edges2 := bondgraph.PathEdges(path2)

		// one call so that both paths flip or neither does
		if err := d.g.InvertBonds(append(edges1, edges2...)); err != nil {
			return Pair{}, [2]int{}, attempts, fmt.Errorf("invert paths %v and %v: %w: %w", path1, path2, ErrInvariantViolation, err)
		}
		if in := d.g.InDegree(anion); in != 4 {
			return Pair{}, [2]int{}, attempts, invariantError("place", anion, "anion in-degree %d after inversion", in)
		}
		if out := d.g.OutDegree(cation); out != 4 {
			return Pair{}, [2]int{}, attempts, invariantError("place", cation, "cation out-degree %d after inversion", out)
		}

		pair := Pair{Anion: anion, Cation: cation}
		d.reg.AddPair(pair)
		d.metrics.RecordPairPlaced(path1.Len(), path2.Len())
		d.logger.Debug("paths inverted", append(logging.Pair(anion, cation),
			logging.Any("path1", path1), logging.Any("path2", path2))...)
		return pair, [2]int{path1.Len(), path2.Len()}, attempts, nil
	}
}
