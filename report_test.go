package quadbench

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// fastCompareOptions is the reference scenario without left rectangles.
func fastCompareOptions() CompareOptions {
	opts := DefaultCompareOptions()
	opts.Rules = []Rule{Midpoint{}, Trapezoid{}, Simpson{}}
	opts.Rand = NewRand(42)
	return opts
}

// TestCompare_ReferenceScenario verifies every method is reported against
// the closed-form value.
func TestCompare_ReferenceScenario(t *testing.T) {
	report, err := Compare(context.Background(), fastCompareOptions())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if report.RunID == uuid.Nil {
		t.Error("run ID not set")
	}
	if report.Integrand != "x^2·sin(x)" {
		t.Errorf("integrand %q", report.Integrand)
	}
	if math.Abs(report.Reference-referenceValue) > 1e-12 {
		t.Errorf("reference %.15f, want %.15f", report.Reference, referenceValue)
	}
	if len(report.Methods) != 3 {
		t.Fatalf("expected 3 methods, got %d", len(report.Methods))
	}

	for _, m := range report.Methods {
		if !m.OK() || !m.RelativeDefined {
			t.Errorf("%s: not ok (%s)", m.Name, m.Diagnostic)
		}
		if m.RelativeError > 1e-6 {
			t.Errorf("%s: relative error %.3e", m.Name, m.RelativeError)
		}
		t.Logf("✓ %-20s %.10f  abs=%.2e  rel=%.2e  n=%d", m.Name, m.Estimate, m.AbsoluteError, m.RelativeError, m.Iterations)
	}

	mc := report.MonteCarlo
	if mc.Name != "Monte Carlo" || mc.Iterations != 15000 {
		t.Errorf("monte carlo record %+v", mc)
	}
	if !mc.OK() || mc.AbsoluteError > 2.5 {
		t.Errorf("monte carlo estimate %.4f (abs %.4f)", mc.Estimate, mc.AbsoluteError)
	}
	if len(report.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", report.Diagnostics())
	}
}

// TestCompare_Reproducible verifies a fixed seed reproduces the Monte Carlo
// estimate.
func TestCompare_Reproducible(t *testing.T) {
	a, err := Compare(context.Background(), fastCompareOptions())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compare(context.Background(), fastCompareOptions())
	if err != nil {
		t.Fatal(err)
	}
	if a.MonteCarlo.Estimate != b.MonteCarlo.Estimate {
		t.Errorf("estimates differ: %v vs %v", a.MonteCarlo.Estimate, b.MonteCarlo.Estimate)
	}
	if a.RunID == b.RunID {
		t.Error("run IDs should differ")
	}
}

// TestCompare_ZeroReference verifies an odd integrand over a symmetric
// interval reports absolute errors and flags the relative ones.
func TestCompare_ZeroReference(t *testing.T) {
	odd := PolyTrig{Coeffs: []float64{0, 1}, Trig: TrigNone}
	opts := fastCompareOptions()
	opts.Interval = Interval{A: -1, B: 1}
	opts.Integrand = odd
	opts.Oracle = odd
	opts.Tolerance = 1e-3

	report, err := Compare(context.Background(), opts)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if report.Reference != 0 {
		t.Fatalf("reference %v, want 0", report.Reference)
	}

	for _, m := range report.Methods {
		if !m.OK() {
			t.Errorf("%s: should still produce an estimate, got %v", m.Name, m.Err)
		}
		if m.RelativeDefined {
			t.Errorf("%s: relative error marked defined", m.Name)
		}
		if !errors.Is(m.Err, ErrUndefinedRelativeError) {
			t.Errorf("%s: expected ErrUndefinedRelativeError, got %v", m.Name, m.Err)
		}
	}
	if len(report.Diagnostics()) != 4 {
		t.Errorf("expected 4 diagnostics, got %v", report.Diagnostics())
	}
}

// TestCompare_MethodFailure verifies a non-converging rule is reported and
// the other methods still run.
func TestCompare_MethodFailure(t *testing.T) {
	opts := fastCompareOptions()
	opts.Tolerance = 1e-12
	opts.Engine = EngineConfig{MaxIterations: 6}

	report, err := Compare(context.Background(), opts)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	for _, m := range report.Methods {
		if m.OK() {
			t.Errorf("%s: expected failure", m.Name)
			continue
		}
		if !strings.HasPrefix(m.Diagnostic, "did not converge") {
			t.Errorf("%s: diagnostic %q", m.Name, m.Diagnostic)
		}
	}
	if !report.MonteCarlo.OK() {
		t.Errorf("monte carlo should be unaffected: %v", report.MonteCarlo.Err)
	}
}

// TestCompare_RombergFallback verifies a nil oracle uses Romberg.
func TestCompare_RombergFallback(t *testing.T) {
	opts := fastCompareOptions()
	opts.Integrand = Pointwise(func(x float64) float64 { return x * x * math.Sin(x) })
	opts.Oracle = nil

	report, err := Compare(context.Background(), opts)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if math.Abs(report.Reference-referenceValue) > 1e-10 {
		t.Errorf("Romberg reference %.15f", report.Reference)
	}
	if report.Integrand != "" {
		t.Errorf("function integrand has no name, got %q", report.Integrand)
	}
}

func TestCompare_InvalidInput(t *testing.T) {
	opts := fastCompareOptions()
	opts.Integrand = nil
	if _, err := Compare(context.Background(), opts); !errors.Is(err, ErrInvalidIntegrand) {
		t.Errorf("expected ErrInvalidIntegrand, got %v", err)
	}

	opts = fastCompareOptions()
	opts.Interval = Interval{A: 5, B: 0}
	if _, err := Compare(context.Background(), opts); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}

	opts = fastCompareOptions()
	opts.Samples = 0
	report, err := Compare(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(report.MonteCarlo.Err, ErrInvalidSampleCount) {
		t.Errorf("expected ErrInvalidSampleCount, got %v", report.MonteCarlo.Err)
	}
}

func TestCompare_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Compare(ctx, fastCompareOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
