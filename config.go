package quadbench

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full run description: interval, integrand, tolerances,
// Monte Carlo sampling and the sweep grid.
type Config struct {
	A         float64  `yaml:"a" json:"a"`
	B         float64  `yaml:"b" json:"b" validate:"gtfield=A"`
	Tolerance float64  `yaml:"tolerance" json:"tolerance" validate:"gt=0"`
	Integrand PolyTrig `yaml:"integrand" json:"integrand"`
	Rules     []string `yaml:"rules" json:"rules" validate:"dive,rule"`

	MonteCarlo MonteCarloConfig `yaml:"monte_carlo" json:"monte_carlo"`
	Sweep      SweepConfig      `yaml:"sweep" json:"sweep"`
	Engine     EngineSettings   `yaml:"engine" json:"engine"`
}

// MonteCarloConfig controls the stochastic estimator.
type MonteCarloConfig struct {
	Samples int    `yaml:"samples" json:"samples" validate:"gt=0"`
	Seed    uint64 `yaml:"seed" json:"seed"`
}

// SweepConfig is the tolerance grid [Start, Stop) with spacing Step.
type SweepConfig struct {
	Start   float64 `yaml:"start" json:"start" validate:"gt=0"`
	Stop    float64 `yaml:"stop" json:"stop" validate:"gtfield=Start"`
	Step    float64 `yaml:"step" json:"step" validate:"gt=0"`
	Workers int     `yaml:"workers" json:"workers" validate:"gte=0"` // 0 = runtime.NumCPU()
}

// EngineSettings mirrors EngineConfig for files.
type EngineSettings struct {
	MaxIterations int `yaml:"max_iterations" json:"max_iterations" validate:"gte=1,lte=40"`
	BatchSize     int `yaml:"batch_size" json:"batch_size" validate:"gte=1"`
}

// DefaultConfig returns the reference scenario.
func DefaultConfig() Config {
	eng := DefaultEngineConfig()
	return Config{
		A:         0,
		B:         5,
		Tolerance: 1e-6,
		Integrand: ReferenceIntegrand(),
		Rules:     []string{string(KindLeftRectangle), string(KindMidpoint), string(KindTrapezoid), string(KindSimpson)},
		MonteCarlo: MonteCarloConfig{
			Samples: 15000,
			Seed:    0,
		},
		Sweep: SweepConfig{
			Start: 1e-5,
			Stop:  1e-2,
			Step:  25e-6,
		},
		Engine: EngineSettings{
			MaxIterations: eng.MaxIterations,
			BatchSize:     eng.BatchSize,
		},
	}
}

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("rule", func(fl validator.FieldLevel) bool {
		_, err := RuleByName(fl.Field().String())
		return err == nil
	})
}

// Validate checks field constraints and the integrand description.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			v := verrs[0]
			return fmt.Errorf("%s fails %q (value %v): %w", v.Namespace(), v.Tag(), v.Value(), ErrInvalidConfig)
		}
		return fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}
	if err := c.Integrand.Validate(); err != nil {
		return fmt.Errorf("integrand: %w", errors.Join(err, ErrInvalidConfig))
	}
	return nil
}

// LoadConfig reads a YAML file over DefaultConfig, applies QUADBENCH_*
// environment overrides and validates the result. An empty path skips
// the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := DecodeConfig(f, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DecodeConfig overlays YAML from r onto cfg. Unknown keys are rejected.
// An empty document leaves cfg unchanged.
func DecodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// applyEnv reads QUADBENCH_TOLERANCE, QUADBENCH_SEED and QUADBENCH_WORKERS.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("QUADBENCH_TOLERANCE"); v != "" {
		tol, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("QUADBENCH_TOLERANCE: %w", errors.Join(err, ErrInvalidConfig))
		}
		cfg.Tolerance = tol
	}
	if v := os.Getenv("QUADBENCH_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("QUADBENCH_SEED: %w", errors.Join(err, ErrInvalidConfig))
		}
		cfg.MonteCarlo.Seed = seed
	}
	if v := os.Getenv("QUADBENCH_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QUADBENCH_WORKERS: %w", errors.Join(err, ErrInvalidConfig))
		}
		cfg.Sweep.Workers = workers
	}
	return nil
}

// Interval returns [A, B].
func (c Config) Interval() Interval {
	return Interval{A: c.A, B: c.B}
}

// EngineConfig returns the loop bounds.
func (c Config) EngineConfig() EngineConfig {
	return EngineConfig{MaxIterations: c.Engine.MaxIterations, BatchSize: c.Engine.BatchSize}
}

// RuleSet resolves Rules, defaulting to all four.
func (c Config) RuleSet() ([]Rule, error) {
	if len(c.Rules) == 0 {
		return Rules(), nil
	}
	rules := make([]Rule, 0, len(c.Rules))
	for _, name := range c.Rules {
		r, err := RuleByName(name)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// Tolerances expands the sweep grid.
func (c Config) Tolerances() ([]float64, error) {
	return ToleranceRange(c.Sweep.Start, c.Sweep.Stop, c.Sweep.Step)
}

// CompareOptions builds Compare input from the configuration.
func (c Config) CompareOptions(logger *slog.Logger, metrics *Metrics) (CompareOptions, error) {
	rules, err := c.RuleSet()
	if err != nil {
		return CompareOptions{}, err
	}
	return CompareOptions{
		Interval:  c.Interval(),
		Integrand: c.Integrand,
		Oracle:    c.Integrand,
		Tolerance: c.Tolerance,
		Samples:   c.MonteCarlo.Samples,
		Rand:      NewRand(c.MonteCarlo.Seed),
		Rules:     rules,
		Engine:    c.EngineConfig(),
		Logger:    logger,
		Metrics:   metrics,
	}, nil
}

// SweepOptions builds Sweep input from the configuration.
func (c Config) SweepOptions(logger *slog.Logger, metrics *Metrics) (SweepOptions, error) {
	rules, err := c.RuleSet()
	if err != nil {
		return SweepOptions{}, err
	}
	workers := c.Sweep.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return SweepOptions{
		Rules:   rules,
		Workers: workers,
		Engine:  c.EngineConfig(),
		Logger:  logger,
		Metrics: metrics,
	}, nil
}
