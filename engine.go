package quadbench

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Estimate is the outcome of one converged quadrature run.
type Estimate struct {
	Value      float64 // integral estimate at N
	N          int     // partition count at convergence
	Iterations int     // refinements evaluated, including the first
	Delta      float64 // |Value - previous estimate|
}

// EngineConfig controls the step-doubling loop.
type EngineConfig struct {
	// MaxIterations bounds the refinements. The last n tried is
	// BaseN·2^(MaxIterations-1). Left rectangles need 26 refinements to
	// reach 1e-6 on the reference integrand.
	MaxIterations int

	// BatchSize is the number of abscissas handed to one Evaluate call.
	BatchSize int
}

// DefaultEngineConfig returns sensible defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxIterations: 28,
		BatchSize:     1 << 16,
	}
}

// Engine repeatedly doubles a uniform partition until two consecutive
// estimates of a Rule differ by less than the tolerance.
//
// Convergence is self-referential: it says the estimate stopped moving,
// not that it is within tolerance of the true integral.
type Engine struct {
	rule    Rule
	cfg     EngineConfig
	logger  *slog.Logger
	metrics *Metrics
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithEngineConfig replaces the loop bounds. Zero fields keep their defaults.
func WithEngineConfig(cfg EngineConfig) EngineOption {
	return func(e *Engine) {
		if cfg.MaxIterations > 0 {
			e.cfg.MaxIterations = cfg.MaxIterations
		}
		if cfg.BatchSize > 0 {
			e.cfg.BatchSize = cfg.BatchSize
		}
	}
}

// WithLogger sets the logger; nil is ignored.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records evaluations and outcomes into m.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an engine for rule.
func NewEngine(rule Rule, opts ...EngineOption) *Engine {
	e := &Engine{
		rule:   rule,
		cfg:    DefaultEngineConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rule returns the rule this engine drives.
func (e *Engine) Rule() Rule {
	return e.rule
}

// Integrate runs the step-doubling loop over iv.
//
// It returns ErrInvalidInterval or ErrInvalidTolerance before touching f.
// When the iteration bound is hit, or an estimate is NaN or infinite, the
// error is a *ConvergenceError wrapping ErrNonConvergence. Cancelling ctx
// stops the loop between refinements with a *ConvergenceError wrapping
// the context error.
func (e *Engine) Integrate(ctx context.Context, iv Interval, f Integrand, tolerance float64) (Estimate, error) {
	if err := iv.Validate(); err != nil {
		return Estimate{}, err
	}
	if err := ValidateTolerance(tolerance); err != nil {
		return Estimate{}, err
	}

	ctx, span := tracer().Start(ctx, "quadbench.Integrate", trace.WithAttributes(
		attribute.String("rule", string(e.rule.Kind())),
		attribute.Float64("tolerance", tolerance),
	))
	defer span.End()

	est, err := e.converge(ctx, iv, f, tolerance)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.observeFailure(e.rule)
		e.logger.Warn("quadrature stopped without converging",
			"rule", e.rule.Kind(),
			"tolerance", tolerance,
			"error", err)
		return est, err
	}

	span.SetAttributes(
		attribute.Int("n", est.N),
		attribute.Int("iterations", est.Iterations),
	)
	e.metrics.observeConverged(e.rule, est)
	return est, nil
}

func (e *Engine) converge(ctx context.Context, iv Interval, f Integrand, tolerance float64) (Estimate, error) {
	n := e.rule.BaseN()
	previous := 0.0
	delta := math.Inf(1)
	lastN := n

	for iter := 1; iter <= e.cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return Estimate{}, e.stopped(lastN, iter-1, delta, err)
		}

		current, err := e.quadrature(iv, n, f)
		if err != nil {
			return Estimate{}, err
		}
		lastN = n

		if math.IsNaN(current) || math.IsInf(current, 0) {
			return Estimate{}, e.stopped(n, iter, delta,
				fmt.Errorf("estimate is %v: %w", current, ErrNonConvergence))
		}

		delta = math.Abs(current - previous)
		e.logger.Debug("refinement",
			"rule", e.rule.Kind(),
			"n", n,
			"estimate", current,
			"delta", delta)

		if delta < tolerance {
			return Estimate{Value: current, N: n, Iterations: iter, Delta: delta}, nil
		}

		previous = current
		n *= 2
	}

	return Estimate{}, e.stopped(lastN, e.cfg.MaxIterations, delta, ErrNonConvergence)
}

func (e *Engine) stopped(n, iterations int, delta float64, cause error) error {
	return &ConvergenceError{
		Rule:       string(e.rule.Kind()),
		N:          n,
		Iterations: iterations,
		Delta:      delta,
		Wrapped:    cause,
	}
}

// quadrature evaluates the rule at a fixed n, streaming abscissas to f in
// batches so memory stays bounded for large n.
func (e *Engine) quadrature(iv Interval, n int, f Integrand) (float64, error) {
	points := e.rule.Points(n)
	buf := make([]float64, min(points, e.cfg.BatchSize))

	acc := 0.0
	for start := 0; start < points; start += len(buf) {
		xs := buf[:min(len(buf), points-start)]
		for j := range xs {
			xs[j] = e.rule.Abscissa(iv, n, start+j)
		}

		ys := f.Evaluate(xs)
		if len(ys) != len(xs) {
			return 0, fmt.Errorf("%s at n=%d: got %d values for %d abscissas: %w",
				e.rule.Kind(), n, len(ys), len(xs), ErrIntegrandShape)
		}
		for j, y := range ys {
			acc += e.rule.Weight(n, start+j) * y
		}
	}
	e.metrics.observeEvaluations(e.rule, points)

	return e.rule.Scale(iv.Step(n)) * acc, nil
}

// Quadrature evaluates rule once at a fixed partition count, without any
// convergence loop.
func Quadrature(rule Rule, iv Interval, n int, f Integrand) (float64, error) {
	if err := iv.Validate(); err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("n=%d: %w", n, ErrInvalidPartition)
	}
	return NewEngine(rule).quadrature(iv, n, f)
}

// Integrate runs rule over [a, b] with the default engine configuration.
func Integrate(ctx context.Context, rule Rule, a, b float64, f Integrand, tolerance float64) (Estimate, error) {
	return NewEngine(rule).Integrate(ctx, Interval{A: a, B: b}, f, tolerance)
}

// ValidateTolerance rejects tolerances that are not positive and finite.
func ValidateTolerance(tolerance float64) error {
	if !(tolerance > 0) || math.IsInf(tolerance, 0) {
		return fmt.Errorf("tolerance %g: %w", tolerance, ErrInvalidTolerance)
	}
	return nil
}
