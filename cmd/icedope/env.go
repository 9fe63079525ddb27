package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dd0wney/icedope/pkg/config"
	"github.com/dd0wney/icedope/pkg/logging"
	"github.com/dd0wney/icedope/pkg/metrics"
	"github.com/dd0wney/icedope/pkg/validation"
)

type cli struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
}

// runFlags are shared by the commands that mutate a lattice.
type runFlags struct {
	configPath string
	seed       uint64
	textfile   string
}

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (rf *runFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&rf.configPath, "config", "", "YAML run configuration")
	fs.Uint64Var(&rf.seed, "seed", 0, "random seed (overrides the config file)")
	fs.StringVar(&rf.textfile, "metrics", "", "write Prometheus metrics to this .prom file")
}

func parse(fs *flag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", fs.Name(), err, errUsage)
	}
	if fs.NArg() != positional {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d: %w", fs.Name(), positional, fs.NArg(), errUsage)
	}
	return fs.Args(), nil
}

// session is the per-command environment: config, logger and metrics.
type session struct {
	cfg     config.Config
	logger  logging.Logger
	metrics *metrics.Registry
	start   time.Time
}

// open loads the configuration and applies flag and environment overrides.
func (c *cli) open(fs *flag.FlagSet, rf *runFlags) (*session, error) {
	cfg, err := config.Load(rf.configPath)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, errUsage)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed = rf.seed
		case "metrics":
			cfg.Metrics.Textfile = rf.textfile
		}
	})
	if level := os.Getenv(logging.EnvLogLevel); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv(logging.EnvLogFormat); format != "" {
		cfg.Log.Format = format
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, errUsage)
	}

	return &session{
		cfg:     cfg,
		logger:  cfg.Logger(c.stderr).With(logging.String("command", fs.Name())),
		metrics: metrics.NewRegistry(),
		start:   time.Now(),
	}, nil
}

// close writes the metrics textfile if one is configured.
func (s *session) close() error {
	if s.cfg.Metrics.Textfile == "" {
		return nil
	}
	s.metrics.UpdateSystemMetrics(s.start)
	if err := s.metrics.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	s.logger.Debug("metrics written", logging.Path(s.cfg.Metrics.Textfile))
	return nil
}

func check(req any) error {
	if err := validation.ValidateStruct(req); err != nil {
		return fmt.Errorf("%v: %w", err, errUsage)
	}
	return nil
}

func parsePercent(s string) (float64, error) {
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("percent %q: %w", s, errUsage)
	}
	return p, nil
}

func parseCount(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", what, s, errUsage)
	}
	return n, nil
}
