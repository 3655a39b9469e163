package quadbench

import (
	"errors"
	"math"
	"testing"
)

// TestMonteCarlo_Deterministic verifies a fixed seed gives a fixed estimate.
func TestMonteCarlo_Deterministic(t *testing.T) {
	f := ReferenceIntegrand()

	first, err := MonteCarlo(referenceInterval, f, 15000, NewRand(42))
	if err != nil {
		t.Fatalf("MonteCarlo failed: %v", err)
	}
	second, err := MonteCarlo(referenceInterval, f, 15000, NewRand(42))
	if err != nil {
		t.Fatalf("MonteCarlo failed: %v", err)
	}
	if first != second {
		t.Errorf("same seed gave %.15f and %.15f", first, second)
	}

	other, _ := MonteCarlo(referenceInterval, f, 15000, NewRand(43))
	if other == first {
		t.Error("different seeds gave identical estimates")
	}

	t.Logf("✓ seed 42: %.6f (exact %.6f)", first, referenceValue)
}

// TestMonteCarlo_Accuracy verifies 15000 samples land within a few
// standard errors of the exact value.
func TestMonteCarlo_Accuracy(t *testing.T) {
	f := ReferenceIntegrand()

	// σ(f) ≈ 10 on [0,5], so 5·σ/√15000 ≈ 0.4
	for seed := uint64(0); seed < 5; seed++ {
		v, err := MonteCarlo(referenceInterval, f, 15000, NewRand(seed))
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(v-referenceValue) > 2.5 {
			t.Errorf("seed %d: estimate %.4f too far from %.4f", seed, v, referenceValue)
		}
	}
}

// TestMonteCarlo_Samples verifies x is drawn from [a, b).
func TestMonteCarlo_Samples(t *testing.T) {
	iv := Interval{A: 2, B: 3}
	f := IntegrandFunc(func(xs []float64) []float64 {
		for _, x := range xs {
			if x < iv.A || x >= iv.B {
				t.Fatalf("sample %v outside [%v, %v)", x, iv.A, iv.B)
			}
		}
		return make([]float64, len(xs))
	})

	if _, err := MonteCarlo(iv, f, 1000, NewRand(1)); err != nil {
		t.Fatal(err)
	}
}

// TestMonteCarlo_Constant verifies a constant integrand is exact.
func TestMonteCarlo_Constant(t *testing.T) {
	seven := Pointwise(func(float64) float64 { return 7 })
	v, err := MonteCarlo(Interval{A: -1, B: 3}, seven, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(v-28) > 1e-12 {
		t.Errorf("got %v, want 28", v)
	}
}

// TestMonteCarlo_InvalidInput verifies sample count and interval checks.
func TestMonteCarlo_InvalidInput(t *testing.T) {
	f := ReferenceIntegrand()

	for _, n := range []int{0, -5} {
		if _, err := MonteCarlo(referenceInterval, f, n, NewRand(0)); !errors.Is(err, ErrInvalidSampleCount) {
			t.Errorf("samples=%d: expected ErrInvalidSampleCount, got %v", n, err)
		}
	}
	if _, err := MonteCarlo(Interval{A: 1, B: 0}, f, 10, NewRand(0)); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}

	short := IntegrandFunc(func(xs []float64) []float64 { return nil })
	if _, err := MonteCarlo(referenceInterval, short, 10, NewRand(0)); !errors.Is(err, ErrIntegrandShape) {
		t.Errorf("expected ErrIntegrandShape, got %v", err)
	}
}

// TestMonteCarloSpread verifies the error shrinks roughly like 1/√samples.
func TestMonteCarloSpread(t *testing.T) {
	f := ReferenceIntegrand()
	rng := NewRand(7)

	coarse, err := MonteCarloSpread(referenceInterval, f, 1000, 40, referenceValue, rng)
	if err != nil {
		t.Fatal(err)
	}
	fine, err := MonteCarloSpread(referenceInterval, f, 100000, 40, referenceValue, rng)
	if err != nil {
		t.Fatal(err)
	}

	// 100× the samples should cut the spread about 10×
	if fine.StdDev >= coarse.StdDev/3 {
		t.Errorf("spread did not narrow: 1000 samples σ=%.4f, 100000 samples σ=%.4f", coarse.StdDev, fine.StdDev)
	}
	if fine.MeanAbsError >= coarse.MeanAbsError {
		t.Errorf("mean abs error did not shrink: %.4f → %.4f", coarse.MeanAbsError, fine.MeanAbsError)
	}

	t.Logf("✓ σ: %.4f (1k) → %.4f (100k)", coarse.StdDev, fine.StdDev)

	if _, err := MonteCarloSpread(referenceInterval, f, 10, 1, referenceValue, rng); !errors.Is(err, ErrInvalidSampleCount) {
		t.Errorf("trials=1: expected ErrInvalidSampleCount, got %v", err)
	}
}
