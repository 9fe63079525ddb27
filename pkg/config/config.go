// Package config loads the YAML run configuration shared by the icedope
// subcommands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dd0wney/icedope/pkg/defects"
	"github.com/dd0wney/icedope/pkg/logging"
	"github.com/dd0wney/icedope/pkg/parallel"
	"github.com/dd0wney/icedope/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Config is the run configuration.
type Config struct {
	// Seed drives every random choice of the run.
	Seed uint64 `yaml:"seed"`

	Doping    DopingConfig    `yaml:"doping"`
	Diffusion DiffusionConfig `yaml:"diffusion"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Ensemble  EnsembleConfig  `yaml:"ensemble"`
}

// DopingConfig bounds pair placement.
type DopingConfig struct {
	MaxAttempts int `yaml:"max_attempts" validate:"gte=0"`
}

// DiffusionConfig bounds trial moves.
type DiffusionConfig struct {
	MaxSampleAttempts int  `yaml:"max_sample_attempts" validate:"gte=0"`
	MaxTrials         int  `yaml:"max_trials" validate:"gte=0"`
	ExcludeFixedBonds bool `yaml:"exclude_fixed_bonds"`
}

// LogConfig selects the log level and line format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig enables the Prometheus textfile written at the end of a run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// EnsembleConfig sizes the replica worker pool. Zero means one worker per CPU.
type EnsembleConfig struct {
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	d := defects.DefaultConfig()
	return Config{
		Doping: DopingConfig{MaxAttempts: d.MaxAttempts},
		Diffusion: DiffusionConfig{
			MaxSampleAttempts: d.MaxSampleAttempts,
			MaxTrials:         d.MaxTrials,
		},
		Log: LogConfig{Level: "info", Format: string(logging.FormatText)},
	}
}

// Load reads, defaults and validates the file at path. An empty path
// yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r. Unknown keys are rejected so that typos do not
// silently fall back to defaults.
func Parse(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults applies default values to zero-valued fields
func (c *Config) ApplyDefaults() {
	defaults := Default()

	c.Doping.MaxAttempts = validation.DefaultOr(c.Doping.MaxAttempts, defaults.Doping.MaxAttempts)
	c.Diffusion.MaxSampleAttempts = validation.DefaultOr(c.Diffusion.MaxSampleAttempts, defaults.Diffusion.MaxSampleAttempts)
	c.Diffusion.MaxTrials = validation.DefaultOr(c.Diffusion.MaxTrials, defaults.Diffusion.MaxTrials)
	c.Log.Level = validation.DefaultOr(strings.ToLower(c.Log.Level), defaults.Log.Level)
	c.Log.Format = validation.DefaultOr(strings.ToLower(c.Log.Format), defaults.Log.Format)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	v := validation.NewConfigValidator("Config")

	v.Merge(validation.ValidateStruct(c))

	v.Positive("Doping.MaxAttempts", c.Doping.MaxAttempts).
		Positive("Diffusion.MaxSampleAttempts", c.Diffusion.MaxSampleAttempts).
		Positive("Diffusion.MaxTrials", c.Diffusion.MaxTrials).
		RangeInt("Ensemble.Workers", c.Ensemble.Workers, 0, parallel.MaxWorkers).
		OneOf("Log.Level", c.Log.Level, validation.LogLevels).
		OneOf("Log.Format", c.Log.Format, validation.LogFormats)

	// node_exporter only collects *.prom files
	v.When(c.Metrics.Textfile != "", func(cv *validation.ConfigValidator) {
		cv.Custom("Metrics.Textfile", func() error {
			if !strings.HasSuffix(c.Metrics.Textfile, ".prom") {
				return fmt.Errorf("%q must end in .prom: %w", c.Metrics.Textfile, validation.ErrInvalid)
			}
			return nil
		})
	})

	return v.Validate()
}

// Engine returns the budgets for the placement and diffusion engines.
func (c Config) Engine() defects.Config {
	return defects.Config{
		Seed:              c.Seed,
		MaxAttempts:       c.Doping.MaxAttempts,
		MaxSampleAttempts: c.Diffusion.MaxSampleAttempts,
		MaxTrials:         c.Diffusion.MaxTrials,
		ExcludeFixedBonds: c.Diffusion.ExcludeFixedBonds,
	}
}

// Logger builds the configured logger writing to w.
func (c Config) Logger(w io.Writer) logging.Logger {
	return logging.New(logging.Format(c.Log.Format), w, logging.ParseLevel(c.Log.Level))
}
