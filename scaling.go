package quadbench

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ScalingResult contains measurements from a single worker count.
type ScalingResult struct {
	Workers    int           // Concurrent engine runs
	Duration   time.Duration // Wall time of the fastest repeat
	Cells      int           // (rule, tolerance) cells per sweep
	Failed     int           // Cells that did not converge
	Throughput float64       // Cells per second
}

// ScalingConfig controls MeasureScaling.
type ScalingConfig struct {
	Levels   []int // Worker counts to test (default: [1,2,4,8])
	Repeats  int   // Sweeps per level; the fastest is kept
	MaxProcs int   // GOMAXPROCS limit (0 = use runtime default)
}

// DefaultScalingConfig returns sensible defaults.
func DefaultScalingConfig() ScalingConfig {
	return ScalingConfig{
		Levels:   []int{1, 2, 4, 8},
		Repeats:  1,
		MaxProcs: 0,
	}
}

// MeasureScaling runs the same sweep at several worker counts.
//
// Cells are independent, so throughput should grow close to linearly
// until Workers exceeds GOMAXPROCS.
func MeasureScaling(ctx context.Context, iv Interval, f Integrand, tolerances []float64, opts SweepOptions, cfg ScalingConfig) ([]ScalingResult, error) {
	if cfg.MaxProcs > 0 {
		oldMaxProcs := runtime.GOMAXPROCS(cfg.MaxProcs)
		defer runtime.GOMAXPROCS(oldMaxProcs)
	}
	repeats := max(cfg.Repeats, 1)

	results := make([]ScalingResult, 0, len(cfg.Levels))
	for _, workers := range cfg.Levels {
		opts.Workers = workers

		best := ScalingResult{Workers: workers}
		for i := 0; i < repeats; i++ {
			start := time.Now()
			res, err := Sweep(ctx, iv, f, tolerances, opts)
			if err != nil {
				return nil, fmt.Errorf("failed at workers=%d: %w", workers, err)
			}
			elapsed := time.Since(start)

			if best.Duration == 0 || elapsed < best.Duration {
				best.Duration = elapsed
				best.Cells = len(res.Curves) * len(tolerances)
				best.Failed = res.Failures()
			}
		}
		if best.Duration > 0 {
			best.Throughput = float64(best.Cells) / best.Duration.Seconds()
		}
		results = append(results, best)
	}

	return results, nil
}

// Speedup returns throughput relative to the first level.
func Speedup(results []ScalingResult) []float64 {
	out := make([]float64, len(results))
	if len(results) == 0 || results[0].Throughput == 0 {
		return out
	}
	for i, r := range results {
		out[i] = r.Throughput / results[0].Throughput
	}
	return out
}

// Efficiency returns speedup divided by the worker ratio against base.
// 1.0 = perfect linear scaling.
func (r ScalingResult) Efficiency(base ScalingResult) float64 {
	if base.Throughput == 0 || base.Workers == 0 || r.Workers == 0 {
		return 0
	}
	ideal := float64(r.Workers) / float64(base.Workers)
	return (r.Throughput / base.Throughput) / ideal
}

// ScalingFit holds Universal Scalability Law coefficients for sweep
// throughput:
//
//	C(N) = λN / (1 + α(N-1) + βN(N-1))
type ScalingFit struct {
	Lambda   float64 // λ: cells/sec with one worker
	Alpha    float64 // α: contention
	Beta     float64 // β: coordination
	RSquared float64 // goodness of fit
}

// FitScaling fits the USL to at least three levels.
//
// The model is linear after rearranging:
//
//	N/C(N) = 1/λ + (α/λ)(N-1) + (β/λ)N(N-1)
//
// A negative β is a noise artifact; the fit is then redone with β = 0.
func FitScaling(results []ScalingResult) (ScalingFit, error) {
	var usable []ScalingResult
	for _, r := range results {
		if r.Throughput > 0 && r.Workers > 0 {
			usable = append(usable, r)
		}
	}
	if len(usable) < 3 {
		return ScalingFit{}, fmt.Errorf("need at least 3 levels, got %d: %w", len(usable), ErrScalingFit)
	}

	k := len(usable)
	x := mat.NewDense(k, 3, nil)
	y := mat.NewVecDense(k, nil)
	for i, r := range usable {
		n := float64(r.Workers)
		x.Set(i, 0, 1)
		x.Set(i, 1, n-1)
		x.Set(i, 2, n*(n-1))
		y.SetVec(i, n/r.Throughput)
	}

	var b mat.VecDense
	if err := b.SolveVec(x, y); err != nil {
		return ScalingFit{}, fmt.Errorf("%v: %w", err, ErrScalingFit)
	}
	b0, b1, b2 := b.AtVec(0), b.AtVec(1), b.AtVec(2)

	if b2 < 0 && b1 > 0 {
		var b2d mat.VecDense
		if err := b2d.SolveVec(x.Slice(0, k, 0, 2), y); err == nil {
			b0, b1, b2 = b2d.AtVec(0), b2d.AtVec(1), 0
		}
	}
	if b0 <= 0 {
		return ScalingFit{}, fmt.Errorf("non-positive serial term %g: %w", b0, ErrScalingFit)
	}

	fit := ScalingFit{Lambda: 1 / b0, Alpha: b1 / b0, Beta: b2 / b0}

	observed := make([]float64, k)
	predicted := make([]float64, k)
	for i, r := range usable {
		observed[i] = r.Throughput
		predicted[i] = fit.Predict(r.Workers)
	}
	fit.RSquared = stat.RSquaredFrom(predicted, observed, nil)

	return fit, nil
}

// Predict estimates throughput at the given worker count.
func (f ScalingFit) Predict(workers int) float64 {
	n := float64(workers)
	return (f.Lambda * n) / (1 + f.Alpha*(n-1) + f.Beta*n*(n-1))
}
