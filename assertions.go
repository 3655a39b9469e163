package quadbench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
)

// AssertionConfig contains thresholds for convergence properties.
type AssertionConfig struct {
	// Refinements to evaluate when checking the difference sequence
	Refinements int

	// Leading differences to ignore; the first compares against 0 and
	// coarse grids can still undershoot
	Warmup int

	// Relative slack when comparing consecutive differences
	Slack float64

	// Maximum relative error against the reference per rule
	MaxRelativeError map[RuleKind]float64
}

// DefaultAssertionConfig returns thresholds that hold for smooth integrands
// on the reference scenario.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		Refinements: 14,
		Warmup:      2,
		Slack:       1e-9,
		MaxRelativeError: map[RuleKind]float64{
			KindLeftRectangle: 1e-3,
			KindMidpoint:      1e-3,
			KindTrapezoid:     1e-3,
			KindSimpson:       1e-4,
		},
	}
}

// AssertShrinkingDifferences verifies |Q(2n) - Q(n)| never grows once past
// the warmup refinements.
//
// Mathematical property:
//
//	|Q(n·2^(k+1)) - Q(n·2^k)| ≤ |Q(n·2^k) - Q(n·2^(k-1))| for k ≥ Warmup
func AssertShrinkingDifferences(t *testing.T, rule Rule, iv Interval, f Integrand, cfg AssertionConfig) []float64 {
	t.Helper()

	diffs := make([]float64, 0, cfg.Refinements)
	previous := 0.0
	n := rule.BaseN()
	for k := 0; k < cfg.Refinements; k++ {
		q, err := Quadrature(rule, iv, n, f)
		if err != nil {
			t.Fatalf("%s: quadrature at n=%d failed: %v", rule.Title(), n, err)
		}
		diffs = append(diffs, math.Abs(q-previous))
		previous = q
		n *= 2
	}

	var failures []string
	for k := cfg.Warmup + 1; k < len(diffs); k++ {
		if diffs[k] > diffs[k-1]*(1+cfg.Slack) {
			failures = append(failures, fmt.Sprintf("  k=%d: %.3e > %.3e", k, diffs[k], diffs[k-1]))
		}
	}
	if len(failures) > 0 {
		t.Errorf("%s: successive differences grew:\n%v", rule.Title(), failures)
		return diffs
	}

	t.Logf("✓ %s: differences shrink from %.3e to %.3e over %d refinements",
		rule.Title(), diffs[cfg.Warmup], diffs[len(diffs)-1], cfg.Refinements)
	return diffs
}

// AssertPartitionDoubling verifies n = BaseN·2^k for some k ≥ 0.
func AssertPartitionDoubling(t *testing.T, rule Rule, n int) {
	t.Helper()

	if n < rule.BaseN() || n%rule.BaseN() != 0 {
		t.Errorf("%s: n=%d is not a multiple of base %d", rule.Title(), n, rule.BaseN())
		return
	}
	k := n / rule.BaseN()
	if k&(k-1) != 0 {
		t.Errorf("%s: n=%d is not %d·2^k", rule.Title(), n, rule.BaseN())
	}
}

// AssertConverges runs the engine and checks the estimate against the
// closed-form reference.
func AssertConverges(t *testing.T, rule Rule, iv Interval, f Integrand, oracle Oracle, tolerance float64, cfg AssertionConfig) Estimate {
	t.Helper()

	ctx := context.Background()
	est, err := NewEngine(rule).Integrate(ctx, iv, f, tolerance)
	if err != nil {
		t.Fatalf("%s: did not converge at tolerance %g: %v", rule.Title(), tolerance, err)
	}
	AssertPartitionDoubling(t, rule, est.N)

	if est.Delta >= tolerance {
		t.Errorf("%s: returned with delta %.3e ≥ tolerance %g", rule.Title(), est.Delta, tolerance)
	}

	exact, err := oracle.Exact(ctx, iv)
	if err != nil {
		t.Fatalf("reference value: %v", err)
	}
	pair, err := Deviation(est.Value, exact)
	if err != nil && !errors.Is(err, ErrUndefinedRelativeError) {
		t.Fatalf("deviation: %v", err)
	}

	limit, ok := cfg.MaxRelativeError[rule.Kind()]
	if ok && err == nil && pair.Relative > limit {
		t.Errorf("%s: relative error %.3e exceeds %.1e (estimate %.10f, exact %.10f)",
			rule.Title(), pair.Relative, limit, est.Value, exact)
	}

	t.Logf("✓ %s: n=%d, estimate=%.10f, rel.err=%.3e", rule.Title(), est.N, est.Value, pair.Relative)
	return est
}

// AssertCurveAligned verifies one point per tolerance in input order, each
// either failed or a valid doubling of the rule's base n.
func AssertCurveAligned(t *testing.T, result SweepResult, tolerances []float64) {
	t.Helper()

	for _, curve := range result.Curves {
		if len(curve.Points) != len(tolerances) {
			t.Errorf("%s: %d points for %d tolerances", curve.Title, len(curve.Points), len(tolerances))
			continue
		}
		rule, err := RuleByName(string(curve.Rule))
		if err != nil {
			t.Errorf("curve with unknown rule %q", curve.Rule)
			continue
		}
		for i, p := range curve.Points {
			if p.Tolerance != tolerances[i] {
				t.Errorf("%s[%d]: tolerance %g, want %g", curve.Title, i, p.Tolerance, tolerances[i])
			}
			if p.Failed() {
				continue
			}
			AssertPartitionDoubling(t, rule, p.N)
		}
	}
}

// PrintCurves outputs the sweep table to the test log.
func PrintCurves(t *testing.T, result SweepResult) {
	t.Helper()

	t.Logf("\n=== N vs tolerance ===")
	header := fmt.Sprintf("  %-12s", "tolerance")
	for _, c := range result.Curves {
		header += fmt.Sprintf(" %20s", c.Title)
	}
	t.Logf("%s", header)

	for i, tol := range result.Tolerances {
		row := fmt.Sprintf("  %-12.3e", tol)
		for _, c := range result.Curves {
			p := c.Points[i]
			if p.Failed() {
				row += fmt.Sprintf(" %20s", "—")
			} else {
				row += fmt.Sprintf(" %20d", p.N)
			}
		}
		t.Logf("%s", row)
	}
}
