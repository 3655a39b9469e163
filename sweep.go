package quadbench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Point is one (tolerance, partition count) cell of a sweep curve.
// A failed cell keeps its tolerance, has N = 0 and carries Err.
type Point struct {
	Tolerance  float64 `json:"tolerance"`
	N          int     `json:"n"`
	Iterations int     `json:"iterations"`
	Err        error   `json:"-"`
}

// Failed reports whether the cell holds no partition count.
func (p Point) Failed() bool {
	return p.Err != nil
}

// Curve is the partition-count-vs-tolerance sequence of one rule.
type Curve struct {
	Rule   RuleKind `json:"rule"`
	Title  string   `json:"title"`
	Points []Point  `json:"points"`
}

// SweepResult holds one Curve per rule, each aligned with Tolerances.
type SweepResult struct {
	Interval   Interval  `json:"interval"`
	Tolerances []float64 `json:"tolerances"`
	Curves     []Curve   `json:"curves"`
}

// Curve returns the curve for kind.
func (r SweepResult) Curve(kind RuleKind) (Curve, bool) {
	for _, c := range r.Curves {
		if c.Rule == kind {
			return c, true
		}
	}
	return Curve{}, false
}

// ByTitle maps each method title to its points.
func (r SweepResult) ByTitle() map[string][]Point {
	out := make(map[string][]Point, len(r.Curves))
	for _, c := range r.Curves {
		out[c.Title] = c.Points
	}
	return out
}

// Failures counts failed cells over all curves.
func (r SweepResult) Failures() int {
	failed := 0
	for _, c := range r.Curves {
		for _, p := range c.Points {
			if p.Failed() {
				failed++
			}
		}
	}
	return failed
}

// SweepOptions controls Sweep.
type SweepOptions struct {
	Rules   []Rule       // defaults to Rules()
	Workers int          // concurrent engine runs; defaults to runtime.NumCPU()
	Engine  EngineConfig // per-run loop bounds
	Logger  *slog.Logger
	Metrics *Metrics
}

// DefaultSweepOptions returns sensible defaults.
func DefaultSweepOptions() SweepOptions {
	return SweepOptions{
		Rules:   Rules(),
		Workers: runtime.NumCPU(),
		Engine:  DefaultEngineConfig(),
	}
}

// Sweep runs every rule at every tolerance and collects the partition
// counts. Cells are independent and run in parallel; each result is written
// to its own [rule][tolerance] slot, so output order always matches input
// order. The sweep never sorts tolerances.
//
// A cell that fails (non-convergence, bad tolerance) is recorded in its
// Point and the sweep continues. Only an invalid interval or a cancelled
// ctx fails the whole call.
func Sweep(ctx context.Context, iv Interval, f Integrand, tolerances []float64, opts SweepOptions) (SweepResult, error) {
	if err := iv.Validate(); err != nil {
		return SweepResult{}, err
	}
	rules := opts.Rules
	if len(rules) == 0 {
		rules = Rules()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, span := tracer().Start(ctx, "quadbench.Sweep", trace.WithAttributes(
		attribute.Int("rules", len(rules)),
		attribute.Int("tolerances", len(tolerances)),
		attribute.Int("workers", workers),
	))
	defer span.End()

	result := SweepResult{
		Interval:   iv,
		Tolerances: append([]float64(nil), tolerances...),
		Curves:     make([]Curve, len(rules)),
	}
	engines := make([]*Engine, len(rules))
	for i, r := range rules {
		result.Curves[i] = Curve{Rule: r.Kind(), Title: r.Title(), Points: make([]Point, len(tolerances))}
		engines[i] = NewEngine(r,
			WithEngineConfig(opts.Engine),
			WithLogger(logger),
			WithMetrics(opts.Metrics))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

schedule:
	for ri := range rules {
		for ti, tol := range tolerances {
			if gctx.Err() != nil {
				break schedule
			}
			g.Go(func() error {
				point := Point{Tolerance: tol}
				est, err := engines[ri].Integrate(gctx, iv, f, tol)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return err
					}
					point.Err = err
				} else {
					point.N = est.N
					point.Iterations = est.Iterations
				}
				result.Curves[ri].Points[ti] = point
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return SweepResult{}, fmt.Errorf("sweep: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return SweepResult{}, fmt.Errorf("sweep: %w", err)
	}

	if failed := result.Failures(); failed > 0 {
		logger.Warn("sweep finished with failed cells", "failed", failed, "cells", len(rules)*len(tolerances))
	}
	span.SetAttributes(attribute.Int("failed_cells", result.Failures()))
	return result, nil
}

// ToleranceRange returns start, start+step, … up to but excluding stop.
func ToleranceRange(start, stop, step float64) ([]float64, error) {
	for _, v := range []float64{start, stop, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite bound %v: %w", v, ErrInvalidRange)
		}
	}
	if step <= 0 {
		return nil, fmt.Errorf("step %g: %w", step, ErrInvalidRange)
	}
	if start >= stop {
		return nil, fmt.Errorf("start %g >= stop %g: %w", start, stop, ErrInvalidRange)
	}

	count := int(math.Ceil((stop - start) / step))
	out := make([]float64, count)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}
