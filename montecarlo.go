package quadbench

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
)

// MonteCarloEstimator draws uniform samples from an injected generator.
// It is not safe for concurrent use because rand.Rand is not.
type MonteCarloEstimator struct {
	rng     *rand.Rand
	metrics *Metrics
}

// NewMonteCarloEstimator wraps rng. A nil rng gets a PCG source seeded
// with 0 so results stay reproducible.
func NewMonteCarloEstimator(rng *rand.Rand, metrics *Metrics) *MonteCarloEstimator {
	if rng == nil {
		rng = NewRand(0)
	}
	return &MonteCarloEstimator{rng: rng, metrics: metrics}
}

// NewRand returns a PCG-backed generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Estimate returns (b-a)·mean(f(x)) over samples uniform draws in [a, b).
func (m *MonteCarloEstimator) Estimate(iv Interval, f Integrand, samples int) (float64, error) {
	if err := iv.Validate(); err != nil {
		return 0, err
	}
	if samples <= 0 {
		return 0, fmt.Errorf("%d samples: %w", samples, ErrInvalidSampleCount)
	}

	xs := make([]float64, samples)
	for i := range xs {
		xs[i] = iv.A + iv.Width()*m.rng.Float64()
	}
	ys := f.Evaluate(xs)
	if len(ys) != len(xs) {
		return 0, fmt.Errorf("monte carlo: got %d values for %d samples: %w",
			len(ys), len(xs), ErrIntegrandShape)
	}
	m.metrics.observeSamples(samples)

	return iv.Width() * stat.Mean(ys, nil), nil
}

// MonteCarlo is a one-shot Estimate with the given generator.
func MonteCarlo(iv Interval, f Integrand, samples int, rng *rand.Rand) (float64, error) {
	return NewMonteCarloEstimator(rng, nil).Estimate(iv, f, samples)
}

// Spread summarises the absolute error of repeated Monte Carlo trials.
type Spread struct {
	Samples      int
	Trials       int
	MeanAbsError float64
	StdDev       float64 // standard deviation of the estimates
}

// MonteCarloSpread runs trials independent estimates of samples points each
// and measures how far they land from reference.
func MonteCarloSpread(iv Interval, f Integrand, samples, trials int, reference float64, rng *rand.Rand) (Spread, error) {
	if trials < 2 {
		return Spread{}, fmt.Errorf("%d trials (need at least 2): %w", trials, ErrInvalidSampleCount)
	}

	est := NewMonteCarloEstimator(rng, nil)
	estimates := make([]float64, trials)
	absErrors := make([]float64, trials)
	for i := range estimates {
		v, err := est.Estimate(iv, f, samples)
		if err != nil {
			return Spread{}, err
		}
		estimates[i] = v
		absErrors[i] = math.Abs(v - reference)
	}

	_, std := stat.MeanStdDev(estimates, nil)
	return Spread{
		Samples:      samples,
		Trials:       trials,
		MeanAbsError: stat.Mean(absErrors, nil),
		StdDev:       std,
	}, nil
}
