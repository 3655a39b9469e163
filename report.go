package quadbench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MethodReport is the result record for one integration method.
type MethodReport struct {
	Name          string  `json:"name"`
	Estimate      float64 `json:"estimate"`
	AbsoluteError float64 `json:"absolute_error"`
	RelativeError float64 `json:"relative_error"`
	// RelativeDefined is false when the reference is zero; RelativeError is
	// then meaningless and left at 0.
	RelativeDefined bool `json:"relative_defined"`
	// Iterations is the partition count for quadrature rules and the
	// sample count for Monte Carlo.
	Iterations int    `json:"iterations"`
	Diagnostic string `json:"diagnostic,omitempty"`
	Err        error  `json:"-"`
}

// OK reports whether the method produced an estimate.
func (m MethodReport) OK() bool {
	return m.Err == nil || errors.Is(m.Err, ErrUndefinedRelativeError)
}

// Report compares every method against one reference value.
type Report struct {
	RunID      uuid.UUID      `json:"run_id"`
	Integrand  string         `json:"integrand"`
	Interval   Interval       `json:"interval"`
	Tolerance  float64        `json:"tolerance"`
	Reference  float64        `json:"reference"`
	Methods    []MethodReport `json:"methods"`
	MonteCarlo MethodReport   `json:"monte_carlo"`
}

// Diagnostics lists one readable line per method that needs attention.
func (r Report) Diagnostics() []string {
	var out []string
	for _, m := range append(append([]MethodReport(nil), r.Methods...), r.MonteCarlo) {
		if m.Diagnostic != "" {
			out = append(out, m.Name+": "+m.Diagnostic)
		}
	}
	return out
}

// CompareOptions describes one comparison run.
type CompareOptions struct {
	Interval  Interval
	Integrand Integrand
	Oracle    Oracle
	Tolerance float64
	Samples   int        // Monte Carlo samples
	Rand      *rand.Rand // Monte Carlo generator; nil uses NewRand(0)
	Rules     []Rule     // defaults to Rules()
	Engine    EngineConfig
	Logger    *slog.Logger
	Metrics   *Metrics
}

// DefaultCompareOptions returns the reference scenario: x²·sin(x) over
// [0, 5] at tolerance 1e-6 with 15000 Monte Carlo samples.
func DefaultCompareOptions() CompareOptions {
	f := ReferenceIntegrand()
	return CompareOptions{
		Interval:  Interval{A: 0, B: 5},
		Integrand: f,
		Oracle:    f,
		Tolerance: 1e-6,
		Samples:   15000,
		Rules:     Rules(),
		Engine:    DefaultEngineConfig(),
	}
}

// Compare integrates with every rule and with Monte Carlo, then measures
// each estimate against the oracle's reference value.
//
// Method failures are recorded in their MethodReport. Compare itself fails
// only for an invalid interval, an oracle error, or a cancelled ctx.
func Compare(ctx context.Context, opts CompareOptions) (Report, error) {
	if err := opts.Interval.Validate(); err != nil {
		return Report{}, err
	}
	if opts.Integrand == nil {
		return Report{}, fmt.Errorf("compare: nil integrand: %w", ErrInvalidIntegrand)
	}
	oracle := opts.Oracle
	if oracle == nil {
		oracle = RombergOracle{F: opts.Integrand}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rules := opts.Rules
	if len(rules) == 0 {
		rules = Rules()
	}

	report := Report{
		RunID:     uuid.New(),
		Interval:  opts.Interval,
		Tolerance: opts.Tolerance,
	}
	if s, ok := opts.Integrand.(fmt.Stringer); ok {
		report.Integrand = s.String()
	}

	ctx, span := tracer().Start(ctx, "quadbench.Compare", trace.WithAttributes(
		attribute.String("run_id", report.RunID.String()),
		attribute.Float64("tolerance", opts.Tolerance),
	))
	defer span.End()

	reference, err := oracle.Exact(ctx, opts.Interval)
	if err != nil {
		return Report{}, fmt.Errorf("reference value: %w", err)
	}
	report.Reference = reference
	logger.Info("reference value", "run_id", report.RunID, "integrand", report.Integrand, "value", reference)

	for _, r := range rules {
		engine := NewEngine(r,
			WithEngineConfig(opts.Engine),
			WithLogger(logger),
			WithMetrics(opts.Metrics))

		m := MethodReport{Name: r.Title()}
		est, err := engine.Integrate(ctx, opts.Interval, opts.Integrand, opts.Tolerance)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Report{}, fmt.Errorf("compare: %w", ctxErr)
			}
			m.Err = err
			m.Diagnostic = describe(err)
		} else {
			m.Estimate = est.Value
			m.Iterations = est.N
			fillDeviation(&m, reference)
		}
		logger.Info("method finished",
			"method", m.Name,
			"estimate", m.Estimate,
			"abs_error", m.AbsoluteError,
			"n", m.Iterations,
			"ok", m.OK())
		report.Methods = append(report.Methods, m)
	}

	mc := MethodReport{Name: "Monte Carlo", Iterations: opts.Samples}
	value, err := NewMonteCarloEstimator(opts.Rand, opts.Metrics).Estimate(opts.Interval, opts.Integrand, opts.Samples)
	if err != nil {
		mc.Err = err
		mc.Diagnostic = describe(err)
	} else {
		mc.Estimate = value
		fillDeviation(&mc, reference)
	}
	report.MonteCarlo = mc

	return report, nil
}

func fillDeviation(m *MethodReport, reference float64) {
	pair, err := Deviation(m.Estimate, reference)
	m.AbsoluteError = pair.Absolute
	if err != nil {
		m.Err = err
		m.Diagnostic = describe(err)
		return
	}
	m.RelativeError = pair.Relative
	m.RelativeDefined = true
}

// describe turns a method error into a one-line diagnostic.
func describe(err error) string {
	var conv *ConvergenceError
	switch {
	case errors.As(err, &conv) && errors.Is(err, ErrNonConvergence):
		return fmt.Sprintf("did not converge (last n=%d, delta=%.3g after %d iterations)",
			conv.N, conv.Delta, conv.Iterations)
	case errors.Is(err, ErrUndefinedRelativeError):
		return "relative error undefined (reference value is zero)"
	case errors.Is(err, ErrInvalidTolerance):
		return "tolerance must be positive"
	case errors.Is(err, ErrInvalidSampleCount):
		return "sample count must be positive"
	default:
		return err.Error()
	}
}
