// Package quadbench measures how uniform-partition quadrature rules converge.
//
// # Overview
//
// quadbench integrates a scalar function over [a, b] with four step-doubling
// rules (left rectangles, midpoint rectangles, trapezoids, Simpson's) and a
// Monte Carlo estimator, compares every estimate against an exact reference,
// and sweeps a range of tolerances to record how many partitions each rule
// needs.
//
// # Architecture
//
// The package components:
//
//   - rule.go       - The closed set of quadrature rules
//   - engine.go     - Step-doubling convergence loop with an iteration bound
//   - montecarlo.go - Stochastic estimator with an injected generator
//   - deviation.go  - Absolute and relative error
//   - oracle.go     - Closed-form and Romberg reference values
//   - sweep.go      - Parallel tolerance sweep
//   - scaling.go    - Sweep throughput at several worker counts
//   - report.go     - Per-method comparison records
//   - assertions.go - Test helpers for convergence properties
//
// # Quick Start
//
// Integrate x²·sin(x) over [0, 5] with Simpson's rule:
//
//	f := quadbench.ReferenceIntegrand()
//	est, err := quadbench.Integrate(ctx, quadbench.Simpson{}, 0, 5, f, 1e-6)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("∫ = %.10f with n = %d\n", est.Value, est.N)
//
// # The Step-Doubling Loop
//
// Every rule shares one loop:
//
//	n ← BaseN, Q₋₁ ← 0
//	repeat:  Q ← Scale(h) · Σ Weight(n,i) · f(Abscissa(n,i))
//	         stop if |Q - Q₋₁| < tolerance
//	         Q₋₁ ← Q, n ← 2n
//
// Left rectangles start at n = 3, the others at n = 1. The returned n is
// always BaseN·2^k. Convergence means the estimate stopped moving; it is
// not a bound on the error against the true integral.
//
// The loop is bounded by EngineConfig.MaxIterations. Hitting the bound, a
// NaN or infinite estimate, or a cancelled context yields a
// *ConvergenceError instead of an endless loop:
//
//	_, err := engine.Integrate(ctx, iv, f, 1e-12)
//	if errors.Is(err, quadbench.ErrNonConvergence) {
//	    // record a missing data point
//	}
//
// # Convergence Order
//
// For smooth f the error of each rule shrinks like:
//
//   - Left rectangles: O(h)
//   - Midpoint rectangles, trapezoids: O(h²)
//   - Simpson's: O(h⁴)
//
// so halving the tolerance costs rectangles one doubling per factor 2 and
// Simpson's one doubling per factor 16.
//
// # Sweeps
//
// Sweep runs every (rule, tolerance) cell on a bounded worker pool. Results
// are stored by index, so each curve is aligned with the input tolerances.
// A cell that does not converge is recorded with its error and the sweep
// carries on:
//
//	tols, _ := quadbench.ToleranceRange(1e-5, 1e-2, 25e-6)
//	res, err := quadbench.Sweep(ctx, iv, f, tols, quadbench.DefaultSweepOptions())
//
// # Monte Carlo
//
// The estimator takes an explicit *rand.Rand. NewRand(seed) gives a
// reproducible PCG source:
//
//	v, err := quadbench.MonteCarlo(iv, f, 15000, quadbench.NewRand(42))
//
// # Testing
//
// Use the assertions to check convergence properties:
//
//	func TestMyIntegrand(t *testing.T) {
//	    cfg := quadbench.DefaultAssertionConfig()
//	    for _, r := range quadbench.Rules() {
//	        quadbench.AssertShrinkingDifferences(t, r, iv, f, cfg)
//	        quadbench.AssertConverges(t, r, iv, f, oracle, 1e-6, cfg)
//	    }
//	}
//
// # See Also
//
//   - cmd/quadbench - CLI for compare and sweep runs
//   - examples/     - Working code samples
package quadbench
