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

// Reasons a trial move is not applied.
const (
	ReasonNoWaterPartner = metrics.OutcomeNoWaterPartner
	ReasonNoHopPath      = metrics.OutcomeNoHopPath
)

// Diffuser performs trial moves: an ion hops to a neighbouring water site by
// reversing one path from the ion side to the water side plus the bond that
// joins them.
//
// A Diffuser is not safe for concurrent use; it is the single writer of its graph.
type Diffuser struct {
	engine
	g   *bondgraph.Graph
	reg *Registry
	cfg Config
}

// TrialResult describes one trial move.
type TrialResult struct {
	// Applied is false when no hop was possible; the graph is then unchanged.
	Applied bool
	Kind    bondgraph.SiteKind
	// From is the ion site before the move, To the chosen water partner.
	From, To int
	// PathLength is the number of bonds on the replacement path, without the
	// hop bond itself.
	PathLength int
	Reason     string
}

// RunResult summarizes a diffusion run.
type RunResult struct {
	Requested int
	Applied   int
	Trials    int
	// Rejections counts NOT-APPLIED trials per reason.
	Rejections map[string]int
}

// NewDiffuser prepares g for trial moves. Every site must be water or an ion.
func NewDiffuser(g *bondgraph.Graph, cfg Config, opts ...Option) (*Diffuser, error) {
	if err := checkClassified(g); err != nil {
		return nil, fmt.Errorf("new diffuser: %w", err)
	}
	cfg = cfg.withDefaults()
	return &Diffuser{
		engine: newEngine("diffuser", cfg.Seed, opts),
		g:      g,
		reg:    RegistryFromGraph(g),
		cfg:    cfg,
	}, nil
}

// Registry returns the live ion registry.
func (d *Diffuser) Registry() *Registry {
	return d.reg
}

// Run repeats trials until moves hops have been applied. moves == 0 returns
// immediately without touching the graph.
func (d *Diffuser) Run(ctx context.Context, moves int) (RunResult, error) {
	res := RunResult{Requested: moves, Rejections: make(map[string]int)}
	if moves <= 0 {
		return res, nil
	}

	start := time.Now()
	defer func() { d.metrics.ObserveDiffusion(time.Since(start)) }()

	for res.Applied < moves {
		if res.Trials >= d.cfg.MaxTrials {
			return res, fmt.Errorf("diffuse: %d of %d moves after %d trials: %w",
				res.Applied, moves, res.Trials, ErrAttemptsExhausted)
		}
		tr, err := d.Trial(ctx)
		if err != nil {
			return res, err
		}
		res.Trials++
		if tr.Applied {
			res.Applied++
		} else {
			res.Rejections[tr.Reason]++
		}
	}

	d.logger.Info("diffusion finished",
		logging.Int("moves", res.Applied), logging.Int("trials", res.Trials),
		logging.Bool("exclude_fixed", d.cfg.ExcludeFixedBonds))
	d.metrics.UpdateLattice(d.g.NumSites(), d.g.NumBonds(), len(d.reg.anions), len(d.reg.cations))
	return res, nil
}

// Trial picks a random ion and tries to hop it to a neighbouring water site.
// A trial that cannot hop returns Applied == false and leaves the graph
// untouched; only broken invariants and exhausted sampling are errors.
func (d *Diffuser) Trial(ctx context.Context) (TrialResult, error) {
	if err := ctx.Err(); err != nil {
		return TrialResult{}, err
	}
	if d.reg.Len() == 0 {
		return TrialResult{}, ErrNoIons
	}

	ion, kind, err := d.sampleIon()
	if err != nil {
		return TrialResult{}, err
	}
	return d.hop(ion, kind)
}

// TrialAt attempts a hop of the ion on site.
func (d *Diffuser) TrialAt(site int) (TrialResult, error) {
	if site < 0 || site >= d.g.NumSites() {
		return TrialResult{}, fmt.Errorf("trial at %d: %w", site, bondgraph.ErrSiteOutOfRange)
	}
	kind := d.g.Kind(site)
	if kind != bondgraph.Anion && kind != bondgraph.Cation {
		return TrialResult{}, fmt.Errorf("trial at %d: site is %s, not an ion", site, kind)
	}
	return d.hop(site, kind)
}

func (d *Diffuser) sampleIon() (int, bondgraph.SiteKind, error) {
	n := d.g.NumSites()
	for i := 0; i < d.cfg.MaxSampleAttempts; i++ {
		site := d.rng.IntN(n)
		switch kind := d.g.Kind(site); kind {
		case bondgraph.Anion, bondgraph.Cation:
			return site, kind, nil
		case bondgraph.Water:
			d.metrics.RecordVoidSample()
		default:
			return 0, 0, invariantError("sample", site, "out=%d in=%d", d.g.OutDegree(site), d.g.InDegree(site))
		}
	}
	return 0, 0, fmt.Errorf("sample ion: %d draws hit only water: %w", d.cfg.MaxSampleAttempts, ErrAttemptsExhausted)
}

// hop moves the ion on site to a random water neighbour.
//
// For an anion the partner w is a donor (w -> ion); the path runs w ~> ion
// without the bond w -> ion. For a cation the partner is an acceptor
// (ion -> w) and the path runs ion ~> w without the bond ion -> w. Reversing
// the path and then the hop bond swaps the roles of the two sites.
func (d *Diffuser) hop(ion int, kind bondgraph.SiteKind) (TrialResult, error) {
	res := TrialResult{Kind: kind, From: ion, To: -1}

	var candidates []int
	if kind == bondgraph.Anion {
		candidates = d.g.Predecessors(ion)
	} else {
		candidates = d.g.Successors(ion)
	}
	d.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	water := -1
	for _, c := range candidates {
		if d.g.InDegree(c) == 2 {
			water = c
			break
		}
	}
	if water < 0 {
		return d.reject(res, ReasonNoWaterPartner), nil
	}
	res.To = water

	hopBond := bondgraph.Bond{From: water, To: ion}
	source, target := water, ion
	if kind == bondgraph.Cation {
		hopBond = bondgraph.Bond{From: ion, To: water}
		source, target = ion, water
	}

	view := d.g.Without(hopBond)
	if d.cfg.ExcludeFixedBonds {
		view = view.WithoutFixed(ion)
	}
	path, ok := algorithms.ShortestPath(view, source, target)
	if !ok {
		return d.reject(res, ReasonNoHopPath), nil
	}

	edges := append(bondgraph.PathEdges(path), hopBond)
	if err := d.g.InvertBonds(edges); err != nil {
		return res, fmt.Errorf("hop %s %d -> %d: %w: %w", kind, ion, water, ErrInvariantViolation, err)
	}
	if err := d.checkHop(kind, ion, water); err != nil {
		return res, err
	}
	if err := d.markFixed(kind, water, ion); err != nil {
		return res, err
	}
	if err := d.reg.Move(kind, ion, water); err != nil {
		return res, err
	}

	res.Applied = true
	res.PathLength = path.Len()
	d.metrics.RecordTrial(kind.String(), metrics.OutcomeApplied, res.PathLength)
	d.logger.Debug("hop applied", logging.Kind(kind.String()), logging.Int("from", ion),
		logging.Int("to", water), logging.PathLen(res.PathLength))
	return res, nil
}

func (d *Diffuser) reject(res TrialResult, reason string) TrialResult {
	res.Reason = reason
	d.metrics.RecordTrial(res.Kind.String(), reason, 0)
	d.logger.Debug("hop not applied", logging.Kind(res.Kind.String()),
		logging.Site(res.From), logging.String("reason", reason))
	return res
}

// checkHop verifies that the old ion site is water and the partner is now the ion.
func (d *Diffuser) checkHop(kind bondgraph.SiteKind, oldIon, newIon int) error {
	if got := d.g.Kind(oldIon); got != bondgraph.Water {
		return invariantError("hop", oldIon, "former %s is %s", kind, got)
	}
	if got := d.g.Kind(newIon); got != kind {
		return invariantError("hop", newIon, "expected %s, found %s", kind, got)
	}
	return nil
}

// markFixed pins every bond of the new ion and releases the bonds of the new
// water site except the one it shares with the ion.
func (d *Diffuser) markFixed(kind bondgraph.SiteKind, ion, water int) error {
	for _, nb := range d.g.Neighbors(ion) {
		if err := d.g.SetFixed(ion, nb, true); err != nil {
			return fmt.Errorf("fix bond %d-%d: %w", ion, nb, err)
		}
	}

	// The released bonds are the two that turned around during the hop:
	// outbound for a former anion, inbound for a former cation.
	var released []int
	if kind == bondgraph.Anion {
		released = d.g.Successors(water)
	} else {
		released = d.g.Predecessors(water)
	}
	for _, nb := range released {
		if nb == ion {
			continue
		}
		if err := d.g.SetFixed(water, nb, false); err != nil {
			return fmt.Errorf("release bond %d-%d: %w", water, nb, err)
		}
	}
	return nil
}
