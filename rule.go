package quadbench

import (
	"fmt"
	"strings"
)

// RuleKind tags one of the supported quadrature rules.
type RuleKind string

const (
	KindLeftRectangle RuleKind = "left"
	KindMidpoint      RuleKind = "midpoint"
	KindTrapezoid     RuleKind = "trapezoid"
	KindSimpson       RuleKind = "simpson"
)

// Rule is a uniform-partition quadrature formula
//
//	Q(n) = Scale(h) · Σ Weight(n,i) · f(Abscissa(n,i)),  i = 0..Points(n)-1
//
// The set is closed. The engine drives every Rule through the same
// step-doubling loop; only the sampling policy and weights differ.
type Rule interface {
	Kind() RuleKind
	// Title is the method name used in reports.
	Title() string
	// BaseN is the partition count of the first refinement.
	BaseN() int
	// Points is the number of samples taken for n cells.
	Points(n int) int
	Abscissa(iv Interval, n, i int) float64
	Weight(n, i int) float64
	Scale(h float64) float64

	rule()
}

// LeftRectangle samples a, a+h, …, b-h with unit weights.
type LeftRectangle struct{}

func (LeftRectangle) Kind() RuleKind          { return KindLeftRectangle }
func (LeftRectangle) Title() string           { return "Left Rectangles" }
func (LeftRectangle) BaseN() int              { return 3 }
func (LeftRectangle) Points(n int) int        { return n }
func (LeftRectangle) Weight(int, int) float64 { return 1 }
func (LeftRectangle) Scale(h float64) float64 { return h }
func (LeftRectangle) rule()                   {}

func (LeftRectangle) Abscissa(iv Interval, n, i int) float64 {
	return iv.A + float64(i)*iv.Step(n)
}

// Midpoint samples the centre of every cell with unit weights.
type Midpoint struct{}

func (Midpoint) Kind() RuleKind          { return KindMidpoint }
func (Midpoint) Title() string           { return "Midpoint Rectangles" }
func (Midpoint) BaseN() int              { return 1 }
func (Midpoint) Points(n int) int        { return n }
func (Midpoint) Weight(int, int) float64 { return 1 }
func (Midpoint) Scale(h float64) float64 { return h }
func (Midpoint) rule()                   {}

func (Midpoint) Abscissa(iv Interval, n, i int) float64 {
	return iv.A + (float64(i)+0.5)*iv.Step(n)
}

// Trapezoid samples all n+1 nodes, weights 1,2,…,2,1 and scale h/2.
type Trapezoid struct{}

func (Trapezoid) Kind() RuleKind          { return KindTrapezoid }
func (Trapezoid) Title() string           { return "Trapezoids" }
func (Trapezoid) BaseN() int              { return 1 }
func (Trapezoid) Points(n int) int        { return n + 1 }
func (Trapezoid) Scale(h float64) float64 { return h / 2 }
func (Trapezoid) rule()                   {}

func (Trapezoid) Abscissa(iv Interval, n, i int) float64 {
	return node(iv, n, i)
}

func (Trapezoid) Weight(n, i int) float64 {
	if i == 0 || i == n {
		return 1
	}
	return 2
}

// Simpson samples all n+1 nodes, weights 1,4,2,4,…,2,4,1 and scale h/3.
// For n = 1 there is no interior and the estimate is (h/3)(f(a)+f(b));
// every later n is even.
type Simpson struct{}

func (Simpson) Kind() RuleKind          { return KindSimpson }
func (Simpson) Title() string           { return "Simpson's" }
func (Simpson) BaseN() int              { return 1 }
func (Simpson) Points(n int) int        { return n + 1 }
func (Simpson) Scale(h float64) float64 { return h / 3 }
func (Simpson) rule()                   {}

func (Simpson) Abscissa(iv Interval, n, i int) float64 {
	return node(iv, n, i)
}

func (Simpson) Weight(n, i int) float64 {
	switch {
	case i == 0 || i == n:
		return 1
	case i%2 == 1:
		return 4
	default:
		return 2
	}
}

// Rules returns the four rules in reporting order.
func Rules() []Rule {
	return []Rule{LeftRectangle{}, Midpoint{}, Trapezoid{}, Simpson{}}
}

// RuleByName resolves a RuleKind string, case-insensitively.
func RuleByName(name string) (Rule, error) {
	for _, r := range Rules() {
		if strings.EqualFold(string(r.Kind()), name) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownRule)
}

// Abscissas materialises every sample point of r for n cells.
func Abscissas(r Rule, iv Interval, n int) []float64 {
	xs := make([]float64, r.Points(n))
	for i := range xs {
		xs[i] = r.Abscissa(iv, n, i)
	}
	return xs
}

// node returns x_i = a + i·h with x_n pinned to b.
func node(iv Interval, n, i int) float64 {
	if i == n {
		return iv.B
	}
	return iv.A + float64(i)*iv.Step(n)
}
