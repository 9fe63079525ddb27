package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dd0wney/icedope/pkg/algorithms"
	"github.com/dd0wney/icedope/pkg/bundle"
	"github.com/dd0wney/icedope/pkg/defects"
	"github.com/dd0wney/icedope/pkg/export"
	"github.com/dd0wney/icedope/pkg/lattice"
	"github.com/dd0wney/icedope/pkg/logging"
	"github.com/dd0wney/icedope/pkg/parallel"
	"github.com/dd0wney/icedope/pkg/validation"
)

func (c *cli) lattice(args []string) error {
	fs := c.flagSet("lattice")
	var req validation.LatticeRequest
	fs.StringVar(&req.Kind, "kind", lattice.KindDiamond, "lattice kind: "+strings.Join(validation.LatticeKinds, ", "))
	fs.IntVar(&req.Size, "size", 2, "ring length, square edge, or diamond cells per axis")
	fs.StringVar(&req.Out, "out", "", "output bundle")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	if err := check(&req); err != nil {
		return err
	}

	l, err := lattice.Build(req.Kind, req.Size)
	if errors.Is(err, lattice.ErrTooSmall) || errors.Is(err, lattice.ErrUnknownKind) {
		return fmt.Errorf("%v: %w", err, errUsage)
	}
	if err != nil {
		return err
	}
	if err := l.Graph.CheckWaterRule(); err != nil {
		return err
	}

	b := bundle.New(l, 0)
	if err := bundle.Save(req.Out, b); err != nil {
		return err
	}
	summary(c.stdout, "lattice",
		kv("kind", l.Kind),
		kv("sites", l.Graph.NumSites()),
		kv("bonds", l.Graph.NumBonds()),
		kv("run id", b.RunID),
		kv("output", req.Out))
	return nil
}

func (c *cli) dope(args []string) error {
	fs := c.flagSet("dope")
	var rf runFlags
	rf.register(fs)
	pos, err := parse(fs, args, 3)
	if err != nil {
		return err
	}
	percent, err := parsePercent(pos[1])
	if err != nil {
		return err
	}
	req := validation.DopeRequest{In: pos[0], Percent: percent, Out: pos[2]}
	if err := check(&req); err != nil {
		return err
	}

	s, err := c.open(fs, &rf)
	if err != nil {
		return err
	}
	in, err := bundle.Load(req.In)
	if err != nil {
		return err
	}

	run := in.Derive(s.cfg.Seed)
	logger := s.logger.With(logging.RunID(run.RunID), logging.Seed(run.Seed))
	op := logging.StartTimer(logger, "dope finished", logging.Float64("percent", percent))

	doper, err := defects.NewDoper(run.Graph, s.cfg.Engine(),
		defects.WithLogger(logger), defects.WithMetrics(s.metrics))
	if err != nil {
		return err
	}
	res, err := doper.PlacePercent(c.ctx, percent)
	if err != nil {
		op.EndError(err)
		return err
	}
	if err := defects.Verify(run.Graph, doper.Registry()); err != nil {
		op.EndError(err)
		return err
	}

	run.Refresh()
	if err := bundle.Save(req.Out, run); err != nil {
		return err
	}
	op.End(logging.Int("pairs", res.Placed), logging.Attempt(res.Attempts))

	summary(c.stdout, "dope",
		kv("run id", run.RunID),
		kv("seed", run.Seed),
		kv("sites", run.Graph.NumSites()),
		kv("pairs", fmt.Sprintf("%d of %d", res.Placed, res.Requested)),
		kv("attempts", res.Attempts),
		kv("rejections", rejections(res.Rejections)),
		kv("anions", ids(run.Anions)),
		kv("cations", ids(run.Cations)),
		kv("output", req.Out))
	return s.close()
}

func (c *cli) diffuse(args []string) error {
	fs := c.flagSet("diffuse")
	var rf runFlags
	rf.register(fs)
	pos, err := parse(fs, args, 3)
	if err != nil {
		return err
	}
	moves, err := parseCount("moves", pos[1])
	if err != nil {
		return err
	}
	req := validation.DiffuseRequest{In: pos[0], Moves: moves, Out: pos[2]}
	if err := check(&req); err != nil {
		return err
	}

	s, err := c.open(fs, &rf)
	if err != nil {
		return err
	}
	in, err := bundle.Load(req.In)
	if err != nil {
		return err
	}

	run := in.Derive(s.cfg.Seed)
	logger := s.logger.With(logging.RunID(run.RunID), logging.Seed(run.Seed))
	op := logging.StartTimer(logger, "diffuse finished", logging.Int("moves", moves))

	diffuser, err := defects.NewDiffuser(run.Graph, s.cfg.Engine(),
		defects.WithLogger(logger), defects.WithMetrics(s.metrics))
	if err != nil {
		return err
	}
	res, err := diffuser.Run(c.ctx, moves)
	if err != nil {
		op.EndError(err)
		return err
	}
	if err := defects.Verify(run.Graph, diffuser.Registry()); err != nil {
		op.EndError(err)
		return err
	}

	run.Refresh()
	if err := bundle.Save(req.Out, run); err != nil {
		return err
	}
	op.End(logging.Int("trials", res.Trials))

	summary(c.stdout, "diffuse",
		kv("run id", run.RunID),
		kv("seed", run.Seed),
		kv("moves", fmt.Sprintf("%d of %d", res.Applied, res.Requested)),
		kv("trials", res.Trials),
		kv("rejections", rejections(res.Rejections)),
		kv("anions", ids(run.Anions)),
		kv("cations", ids(run.Cations)),
		kv("output", req.Out))
	return s.close()
}

func (c *cli) verify(args []string) error {
	fs := c.flagSet("verify")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	b, err := bundle.Load(pos[0])
	if err != nil {
		return err
	}

	if err := defects.Verify(b.Graph, nil); err != nil {
		failure(c.stdout, "FAIL "+pos[0])
		return err
	}
	census := b.Graph.Census()
	summary(c.stdout, "verify: OK",
		kv("bundle", pos[0]),
		kv("water", census.Water),
		kv("anions", census.Anion),
		kv("cations", census.Cation))
	return nil
}

func (c *cli) inspect(args []string) error {
	fs := c.flagSet("inspect")
	site := fs.Int("site", -1, "site to describe, with BFS reachability")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	b, err := bundle.Load(pos[0])
	if err != nil {
		return err
	}
	g := b.Graph

	census := g.Census()
	summary(c.stdout, "bundle "+pos[0],
		kv("run id", b.RunID),
		kv("seed", b.Seed),
		kv("created", b.CreatedAt.Format("2006-01-02 15:04:05Z07:00")),
		kv("lattice", b.Kind),
		kv("sites", g.NumSites()),
		kv("bonds", g.NumBonds()),
		kv("water", census.Water),
		kv("invalid", census.Invalid),
		kv("anions", ids(b.Anions)),
		kv("cations", ids(b.Cations)))

	if *site < 0 {
		return nil
	}
	if *site >= g.NumSites() {
		return fmt.Errorf("site %d outside 0..%d: %w", *site, g.NumSites()-1, errUsage)
	}

	dist := algorithms.Distances(g, *site)
	reachable, farthest := 0, 0
	for _, d := range dist {
		if d > 0 {
			reachable++
			farthest = max(farthest, d)
		}
	}
	summary(c.stdout, fmt.Sprintf("site %d", *site),
		kv("kind", g.Kind(*site)),
		kv("out / in", fmt.Sprintf("%d / %d", g.OutDegree(*site), g.InDegree(*site))),
		kv("successors", ids(g.Successors(*site))),
		kv("predecessors", ids(g.Predecessors(*site))),
		kv("anionizable", defects.IsAnionizable(g, *site)),
		kv("cationizable", defects.IsCationizable(g, *site)),
		kv("reachable", fmt.Sprintf("%d sites, farthest %d bonds", reachable, farthest)))
	return nil
}

func (c *cli) export(args []string) error {
	fs := c.flagSet("export")
	var req validation.ExportRequest
	fs.StringVar(&req.Format, "format", export.FormatXYZ, "output format: "+strings.Join(validation.ExportFormats, ", "))
	out := fs.String("o", "", "output file (default stdout)")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	req.In = pos[0]
	if err := check(&req); err != nil {
		return err
	}

	b, err := bundle.Load(req.In)
	if err != nil {
		return err
	}

	var w io.Writer = c.stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *out, err)
		}
		defer f.Close()
		w = f
	}

	opts := export.DefaultOptions()
	opts.Comment = fmt.Sprintf("icedope run %s seed %d", b.RunID, b.Seed)
	return export.Write(w, req.Format, b.Lattice(), opts)
}

func (c *cli) ensemble(args []string) error {
	fs := c.flagSet("ensemble")
	var rf runFlags
	rf.register(fs)
	replicas := fs.Int("replicas", 1, "number of independent replicas")
	workers := fs.Int("workers", 0, "worker goroutines (default from config, 0 = one per CPU)")
	showProgress := fs.Bool("progress", false, "show a live progress display while replicas run")
	pos, err := parse(fs, args, 4)
	if err != nil {
		return err
	}
	percent, err := parsePercent(pos[1])
	if err != nil {
		return err
	}
	moves, err := parseCount("moves", pos[2])
	if err != nil {
		return err
	}
	req := validation.EnsembleRequest{
		In: pos[0], Percent: percent, Moves: moves, OutDir: pos[3],
		Replicas: *replicas, Workers: *workers,
	}
	if err := check(&req); err != nil {
		return err
	}

	s, err := c.open(fs, &rf)
	if err != nil {
		return err
	}
	if req.Workers == 0 {
		req.Workers = s.cfg.Ensemble.Workers
	}
	base, err := bundle.Load(req.In)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", req.OutDir, err)
	}

	cfg := parallel.EnsembleConfig{
		Replicas: req.Replicas,
		Workers:  req.Workers,
		Percent:  req.Percent,
		Moves:    req.Moves,
		Engine:   s.cfg.Engine(),
	}
	var view *progressView
	if *showProgress {
		view = newProgressView(c.ctx, c.stdout, req.Replicas, s.logger)
		cfg.Progress = view.report
	}
	e, err := parallel.NewEnsemble(cfg, s.logger, s.metrics)
	if err != nil {
		return err
	}

	var (
		results []parallel.ReplicaResult
		runErr  error
	)
	if view != nil {
		results, runErr = view.run(e, base.Graph)
	} else {
		results, runErr = e.Run(c.ctx, base.Graph)
	}

	saved, attempts, trials := 0, 0, 0
	for _, r := range results {
		attempts += r.Place.Attempts
		trials += r.Diffuse.Trials
		if r.Err != nil {
			continue
		}
		rb := base.Derive(r.Seed)
		rb.Graph = r.Graph
		rb.Refresh()
		path := filepath.Join(req.OutDir, fmt.Sprintf("replica-%03d.icd", r.Replica))
		if err := bundle.Save(path, rb); err != nil {
			return err
		}
		saved++
	}

	failed := slices.IndexFunc(results, func(r parallel.ReplicaResult) bool { return r.Err != nil })
	summary(c.stdout, "ensemble",
		kv("replicas", req.Replicas),
		kv("saved", saved),
		kv("failed", req.Replicas-saved),
		kv("attempts", attempts),
		kv("trials", trials),
		kv("output", req.OutDir))
	if failed >= 0 {
		failure(c.stdout, fmt.Sprintf("first failure: replica %d", failed))
	}
	if err := s.close(); err != nil {
		return err
	}
	return runErr
}
