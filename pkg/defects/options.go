package defects

import (
	"math/rand/v2"

	"github.com/dd0wney/icedope/pkg/logging"
	"github.com/dd0wney/icedope/pkg/metrics"
)

// Default attempt budgets.
const (
	DefaultMaxAttempts       = 100_000
	DefaultMaxSampleAttempts = 100_000
	DefaultMaxTrials         = 1_000_000
)

// Config bounds the randomized loops of the placement and diffusion engines.
type Config struct {
	// Seed drives every random choice; equal seeds replay equal runs.
	Seed uint64

	// MaxAttempts caps candidate draws plus abandoned path searches per pair.
	MaxAttempts int

	// MaxSampleAttempts caps the site draws a single trial may spend looking
	// for an ion.
	MaxSampleAttempts int

	// MaxTrials caps the trials (applied or not) of one diffusion run.
	MaxTrials int

	// ExcludeFixedBonds hides fixed bonds that do not touch the moving ion
	// from the hop path search.
	ExcludeFixedBonds bool
}

// DefaultConfig returns a Config with the default budgets and seed 0.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       DefaultMaxAttempts,
		MaxSampleAttempts: DefaultMaxSampleAttempts,
		MaxTrials:         DefaultMaxTrials,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.MaxSampleAttempts <= 0 {
		c.MaxSampleAttempts = DefaultMaxSampleAttempts
	}
	if c.MaxTrials <= 0 {
		c.MaxTrials = DefaultMaxTrials
	}
	return c
}

// NewRand returns the deterministic generator used for a given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type engine struct {
	logger  logging.Logger
	metrics *metrics.Registry
	rng     *rand.Rand
}

// Option configures a Doper or Diffuser.
type Option func(*engine)

// WithLogger sets the diagnostics sink. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(e *engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records attempts and outcomes into r.
func WithMetrics(r *metrics.Registry) Option {
	return func(e *engine) {
		e.metrics = r
	}
}

// WithRand replaces the seeded generator. Engines that share a generator
// consume one common random stream.
func WithRand(r *rand.Rand) Option {
	return func(e *engine) {
		if r != nil {
			e.rng = r
		}
	}
}

func newEngine(component string, seed uint64, opts []Option) engine {
	e := engine{logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(&e)
	}
	if e.rng == nil {
		e.rng = NewRand(seed)
	}
	e.logger = e.logger.With(logging.Component(component))
	return e
}
