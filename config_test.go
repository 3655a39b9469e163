package quadbench

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, Interval{A: 0, B: 5}, cfg.Interval())
	assert.Equal(t, 1e-6, cfg.Tolerance)
	assert.Equal(t, 15000, cfg.MonteCarlo.Samples)
	assert.Equal(t, "x^2·sin(x)", cfg.Integrand.String())

	rules, err := cfg.RuleSet()
	require.NoError(t, err)
	assert.Len(t, rules, 4)

	tols, err := cfg.Tolerances()
	require.NoError(t, err)
	assert.Len(t, tols, 400)
}

func TestDecodeConfig(t *testing.T) {
	doc := `
a: 1
b: 3
tolerance: 1e-4
integrand:
  coeffs: [0, 1]
  trig: cos
  freq: 2
rules: [simpson, midpoint]
monte_carlo:
  samples: 2000
  seed: 99
sweep:
  start: 1e-4
  stop: 1e-3
  step: 1e-4
  workers: 3
`
	cfg := DefaultConfig()
	require.NoError(t, DecodeConfig(strings.NewReader(doc), &cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, Interval{A: 1, B: 3}, cfg.Interval())
	assert.Equal(t, 1e-4, cfg.Tolerance)
	assert.Equal(t, TrigCosine, cfg.Integrand.Trig)
	assert.Equal(t, uint64(99), cfg.MonteCarlo.Seed)

	// Untouched sections keep their defaults
	assert.Equal(t, DefaultEngineConfig(), cfg.EngineConfig())

	rules, err := cfg.RuleSet()
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, KindSimpson, rules[0].Kind())
	assert.Equal(t, KindMidpoint, rules[1].Kind())

	tols, err := cfg.Tolerances()
	require.NoError(t, err)
	assert.Len(t, tols, 9)

	opts, err := cfg.SweepOptions(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Workers)
}

func TestDecodeConfig_UnknownKey(t *testing.T) {
	cfg := DefaultConfig()
	err := DecodeConfig(strings.NewReader("tolerence: 1e-3\n"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tolerence")
}

func TestDecodeConfig_Empty(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, DecodeConfig(strings.NewReader(""), &cfg))
	assert.Equal(t, DefaultConfig().Tolerance, cfg.Tolerance)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"reversed interval", func(c *Config) { c.A, c.B = 5, 0 }},
		{"zero tolerance", func(c *Config) { c.Tolerance = 0 }},
		{"unknown rule", func(c *Config) { c.Rules = []string{"simpson", "gauss"} }},
		{"no samples", func(c *Config) { c.MonteCarlo.Samples = 0 }},
		{"sweep stop before start", func(c *Config) { c.Sweep.Stop = c.Sweep.Start / 2 }},
		{"negative workers", func(c *Config) { c.Sweep.Workers = -1 }},
		{"too many iterations", func(c *Config) { c.Engine.MaxIterations = 64 }},
		{"bad trig", func(c *Config) { c.Integrand.Trig = "tan" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quadbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tolerance: 1e-5\nmonte_carlo:\n  samples: 100\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1e-5, cfg.Tolerance)
	assert.Equal(t, 100, cfg.MonteCarlo.Samples)
	assert.Equal(t, 5.0, cfg.B)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("QUADBENCH_TOLERANCE", "2e-3")
	t.Setenv("QUADBENCH_SEED", "7")
	t.Setenv("QUADBENCH_WORKERS", "0")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 2e-3, cfg.Tolerance)
	assert.Equal(t, uint64(7), cfg.MonteCarlo.Seed)

	opts, err := cfg.SweepOptions(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), opts.Workers)
}

func TestLoadConfig_BadEnv(t *testing.T) {
	t.Setenv("QUADBENCH_SEED", "minus one")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_CompareOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MonteCarlo.Seed = 11

	a, err := cfg.CompareOptions(nil, nil)
	require.NoError(t, err)
	b, err := cfg.CompareOptions(nil, nil)
	require.NoError(t, err)

	// Each call gets its own generator at the same seed
	assert.Equal(t, a.Rand.Float64(), b.Rand.Float64())
	assert.Equal(t, cfg.Interval(), a.Interval)
	assert.Len(t, a.Rules, 4)
}
