package quadbench

import (
	"errors"
	"math"
	"testing"
)

// TestRuleAbscissas verifies each sampling policy on [0, 4] with n = 4.
func TestRuleAbscissas(t *testing.T) {
	iv := Interval{A: 0, B: 4}

	tests := []struct {
		rule Rule
		want []float64
	}{
		{LeftRectangle{}, []float64{0, 1, 2, 3}},
		{Midpoint{}, []float64{0.5, 1.5, 2.5, 3.5}},
		{Trapezoid{}, []float64{0, 1, 2, 3, 4}},
		{Simpson{}, []float64{0, 1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.rule.Title(), func(t *testing.T) {
			got := Abscissas(tt.rule, iv, 4)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d abscissas, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("x[%d] = %g, want %g", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestRuleWeights verifies the weight patterns and scale factors.
func TestRuleWeights(t *testing.T) {
	tests := []struct {
		rule  Rule
		n     int
		want  []float64
		scale float64 // Scale(1)
	}{
		{LeftRectangle{}, 3, []float64{1, 1, 1}, 1},
		{Midpoint{}, 2, []float64{1, 1}, 1},
		{Trapezoid{}, 4, []float64{1, 2, 2, 2, 1}, 0.5},
		{Simpson{}, 4, []float64{1, 4, 2, 4, 1}, 1.0 / 3},
		{Simpson{}, 1, []float64{1, 1}, 1.0 / 3},
	}

	for _, tt := range tests {
		for i, w := range tt.want {
			if got := tt.rule.Weight(tt.n, i); got != w {
				t.Errorf("%s n=%d: weight[%d] = %g, want %g", tt.rule.Title(), tt.n, i, got, w)
			}
		}
		if got := tt.rule.Scale(1); math.Abs(got-tt.scale) > 1e-15 {
			t.Errorf("%s: Scale(1) = %g, want %g", tt.rule.Title(), got, tt.scale)
		}
	}
}

// TestRuleBaseN verifies left rectangles start at 3 cells, the others at 1.
func TestRuleBaseN(t *testing.T) {
	want := map[RuleKind]int{
		KindLeftRectangle: 3,
		KindMidpoint:      1,
		KindTrapezoid:     1,
		KindSimpson:       1,
	}
	for _, r := range Rules() {
		if r.BaseN() != want[r.Kind()] {
			t.Errorf("%s: BaseN = %d, want %d", r.Title(), r.BaseN(), want[r.Kind()])
		}
	}
}

// TestNodePinnedToB verifies the last node is exactly b despite rounding.
func TestNodePinnedToB(t *testing.T) {
	iv := Interval{A: 0.1, B: 0.7}
	for _, n := range []int{3, 7, 1 << 20} {
		if x := node(iv, n, n); x != iv.B {
			t.Errorf("n=%d: last node %v, want %v", n, x, iv.B)
		}
	}
}

// TestQuadratureSingleStep checks each rule at a fixed n against hand values.
func TestQuadratureSingleStep(t *testing.T) {
	iv := Interval{A: 0, B: 2}
	square := Pointwise(func(x float64) float64 { return x * x })

	tests := []struct {
		rule Rule
		n    int
		want float64
	}{
		// h = 2/3: (0 + 4/9 + 16/9)·2/3
		{LeftRectangle{}, 3, 40.0 / 27},
		// h = 1: 0.25 + 2.25
		{Midpoint{}, 2, 2.5},
		// h = 1: (0 + 2·1 + 4)/2
		{Trapezoid{}, 2, 3},
		// Simpson is exact for cubics
		{Simpson{}, 2, 8.0 / 3},
		// n = 1: (2/3)(0 + 4)
		{Simpson{}, 1, 8.0 / 3},
	}

	for _, tt := range tests {
		got, err := Quadrature(tt.rule, iv, tt.n, square)
		if err != nil {
			t.Fatalf("%s: %v", tt.rule.Title(), err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s n=%d: got %.15f, want %.15f", tt.rule.Title(), tt.n, got, tt.want)
		}
	}
}

// TestQuadratureInvalidPartition verifies n < 1 is rejected.
func TestQuadratureInvalidPartition(t *testing.T) {
	_, err := Quadrature(Midpoint{}, Interval{A: 0, B: 1}, 0, Pointwise(math.Sin))
	if !errors.Is(err, ErrInvalidPartition) {
		t.Errorf("expected ErrInvalidPartition, got %v", err)
	}
}

// TestRuleByName verifies lookup and the unknown-name error.
func TestRuleByName(t *testing.T) {
	for _, r := range Rules() {
		got, err := RuleByName(string(r.Kind()))
		if err != nil {
			t.Fatalf("%s: %v", r.Kind(), err)
		}
		if got.Kind() != r.Kind() {
			t.Errorf("RuleByName(%q) = %s", r.Kind(), got.Kind())
		}
	}

	if r, err := RuleByName("SIMPSON"); err != nil || r.Kind() != KindSimpson {
		t.Errorf("case-insensitive lookup failed: %v", err)
	}

	if _, err := RuleByName("gauss"); !errors.Is(err, ErrUnknownRule) {
		t.Errorf("expected ErrUnknownRule, got %v", err)
	}
}
