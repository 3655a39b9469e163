package quadbench

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/integrate"
)

// Oracle produces the reference value of an integral over iv.
type Oracle interface {
	Exact(ctx context.Context, iv Interval) (float64, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(ctx context.Context, iv Interval) (float64, error)

// Exact calls fn.
func (fn OracleFunc) Exact(ctx context.Context, iv Interval) (float64, error) {
	return fn(ctx, iv)
}

// TrigKind selects the trigonometric factor of a PolyTrig.
type TrigKind string

const (
	TrigNone   TrigKind = "none" // plain polynomial
	TrigSine   TrigKind = "sin"
	TrigCosine TrigKind = "cos"
)

// PolyTrig is the integrand p(x)·sin(k·x), p(x)·cos(k·x) or p(x), where
// p(x) = Σ Coeffs[i]·xⁱ. It evaluates pointwise and integrates in closed
// form, so it serves as both Integrand and Oracle.
type PolyTrig struct {
	Coeffs []float64 `json:"coeffs" yaml:"coeffs"`
	Trig   TrigKind  `json:"trig" yaml:"trig"`
	Freq   float64   `json:"freq" yaml:"freq"`
}

// ReferenceIntegrand returns x²·sin(x).
func ReferenceIntegrand() PolyTrig {
	return PolyTrig{Coeffs: []float64{0, 0, 1}, Trig: TrigSine, Freq: 1}
}

// Validate checks the description is usable.
func (p PolyTrig) Validate() error {
	if len(p.Coeffs) == 0 {
		return fmt.Errorf("no polynomial coefficients: %w", ErrInvalidIntegrand)
	}
	for i, c := range p.Coeffs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("coefficient %d is %v: %w", i, c, ErrInvalidIntegrand)
		}
	}
	switch p.Trig {
	case TrigNone, TrigSine, TrigCosine:
	default:
		return fmt.Errorf("trig %q: %w", p.Trig, ErrInvalidIntegrand)
	}
	if math.IsNaN(p.Freq) || math.IsInf(p.Freq, 0) {
		return fmt.Errorf("frequency %v: %w", p.Freq, ErrInvalidIntegrand)
	}
	return nil
}

// At evaluates the integrand at x.
func (p PolyTrig) At(x float64) float64 {
	v := horner(p.Coeffs, x)
	switch p.Trig {
	case TrigSine:
		return v * math.Sin(p.Freq*x)
	case TrigCosine:
		return v * math.Cos(p.Freq*x)
	}
	return v
}

// Evaluate implements Integrand.
func (p PolyTrig) Evaluate(xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = p.At(x)
	}
	return ys
}

// Antiderivative returns F(x) with F' = p·trig.
//
// Repeated integration by parts gives
//
//	∫ p(x)·g(kx) dx = Σ_j (-1)^j · p⁽ʲ⁾(x) · G_{j+1}(x)
//
// where G_m is the m-th antiderivative of g(kx), namely g(kx - mπ/2)/k^m.
// The sum stops once p⁽ʲ⁾ vanishes.
func (p PolyTrig) Antiderivative(x float64) float64 {
	if p.Trig == TrigNone || p.Freq == 0 {
		return p.polyAntiderivative(x)
	}

	s, c := math.Sincos(p.Freq * x)
	total := 0.0
	sign := 1.0
	scale := 1.0
	deriv := p.Coeffs
	for m := 1; len(deriv) > 0; m++ {
		scale /= p.Freq
		total += sign * horner(deriv, x) * shifted(p.Trig, s, c, m) * scale
		sign = -sign
		deriv = derivative(deriv)
	}
	return total
}

// polyAntiderivative handles k = 0 and plain polynomials.
func (p PolyTrig) polyAntiderivative(x float64) float64 {
	if p.Trig == TrigSine {
		return 0
	}
	total := 0.0
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		total = total*x + p.Coeffs[i]/float64(i+1)
	}
	return total * x
}

// Exact implements Oracle.
func (p PolyTrig) Exact(ctx context.Context, iv Interval) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if err := iv.Validate(); err != nil {
		return 0, err
	}
	return p.Antiderivative(iv.B) - p.Antiderivative(iv.A), nil
}

func (p PolyTrig) String() string {
	var terms []string
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		c := p.Coeffs[i]
		if c == 0 {
			continue
		}
		switch i {
		case 0:
			terms = append(terms, fmt.Sprintf("%g", c))
		case 1:
			terms = append(terms, coeffPrefix(c)+"x")
		default:
			terms = append(terms, fmt.Sprintf("%sx^%d", coeffPrefix(c), i))
		}
	}
	poly := "0"
	if len(terms) > 0 {
		poly = strings.Join(terms, " + ")
	}
	if p.Trig == TrigNone {
		return poly
	}
	if len(terms) > 1 {
		poly = "(" + poly + ")"
	}
	arg := "x"
	if p.Freq != 1 {
		arg = fmt.Sprintf("%gx", p.Freq)
	}
	return fmt.Sprintf("%s·%s(%s)", poly, p.Trig, arg)
}

func coeffPrefix(c float64) string {
	if c == 1 {
		return ""
	}
	return fmt.Sprintf("%g·", c)
}

// shifted returns g(θ - mπ/2) from s = sin θ, c = cos θ without rounding
// the phase.
func shifted(g TrigKind, s, c float64, m int) float64 {
	if g == TrigCosine {
		// cos(θ - mπ/2): cos, sin, -cos, -sin
		switch m % 4 {
		case 0:
			return c
		case 1:
			return s
		case 2:
			return -c
		default:
			return -s
		}
	}
	// sin(θ - mπ/2): sin, -cos, -sin, cos
	switch m % 4 {
	case 0:
		return s
	case 1:
		return -c
	case 2:
		return -s
	default:
		return c
	}
}

func horner(coeffs []float64, x float64) float64 {
	v := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		v = v*x + coeffs[i]
	}
	return v
}

func derivative(coeffs []float64) []float64 {
	if len(coeffs) <= 1 {
		return nil
	}
	d := make([]float64, len(coeffs)-1)
	for i := 1; i < len(coeffs); i++ {
		d[i-1] = float64(i) * coeffs[i]
	}
	return d
}

// RombergOracle approximates the reference value numerically with
// Romberg extrapolation over 2^Levels+1 equally spaced samples. Use it
// when the integrand has no closed form.
type RombergOracle struct {
	F      Integrand
	Levels int // defaults to 16
}

// Exact implements Oracle.
func (o RombergOracle) Exact(ctx context.Context, iv Interval) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := iv.Validate(); err != nil {
		return 0, err
	}
	levels := o.Levels
	if levels <= 0 {
		levels = 16
	}

	n := 1 << uint(levels)
	xs := nodesOf(iv, n)
	ys := o.F.Evaluate(xs)
	if len(ys) != len(xs) {
		return 0, fmt.Errorf("romberg: got %d values for %d abscissas: %w",
			len(ys), len(xs), ErrIntegrandShape)
	}
	return integrate.Romberg(ys, iv.Step(n)), nil
}

func nodesOf(iv Interval, n int) []float64 {
	xs := make([]float64, n+1)
	for i := range xs {
		xs[i] = node(iv, n, i)
	}
	return xs
}
