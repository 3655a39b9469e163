package quadbench

import (
	"fmt"
	"math"
)

// Integrand evaluates a function over a batch of abscissas.
// Evaluate must return one value per input, in input order, and must not
// retain or modify xs. Implementations passed to Sweep are called from
// several goroutines at once.
type Integrand interface {
	Evaluate(xs []float64) []float64
}

// IntegrandFunc adapts a batch function to Integrand.
type IntegrandFunc func(xs []float64) []float64

// Evaluate calls fn(xs).
func (fn IntegrandFunc) Evaluate(xs []float64) []float64 {
	return fn(xs)
}

// Pointwise lifts a scalar function to the batch contract.
func Pointwise(f func(float64) float64) Integrand {
	return IntegrandFunc(func(xs []float64) []float64 {
		ys := make([]float64, len(xs))
		for i, x := range xs {
			ys[i] = f(x)
		}
		return ys
	})
}

// Interval is the closed integration domain [A, B].
type Interval struct {
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
}

// Validate rejects empty, reversed and non-finite intervals.
func (iv Interval) Validate() error {
	if math.IsNaN(iv.A) || math.IsNaN(iv.B) || math.IsInf(iv.A, 0) || math.IsInf(iv.B, 0) {
		return fmt.Errorf("[%g, %g]: %w", iv.A, iv.B, ErrInvalidInterval)
	}
	if iv.A >= iv.B {
		return fmt.Errorf("[%g, %g]: %w", iv.A, iv.B, ErrInvalidInterval)
	}
	return nil
}

// Width returns B - A.
func (iv Interval) Width() float64 {
	return iv.B - iv.A
}

// Step returns the uniform step for n cells.
func (iv Interval) Step(n int) float64 {
	return iv.Width() / float64(n)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%g, %g]", iv.A, iv.B)
}
