package quadbench

import (
	"errors"
	"fmt"
)

// Domain errors. Match them with errors.Is; callers may receive them wrapped.
var (
	// ErrInvalidInterval indicates a >= b or a non-finite bound.
	ErrInvalidInterval = errors.New("quadbench: invalid interval (need finite a < b)")

	// ErrInvalidTolerance indicates a tolerance that is not a positive finite number.
	ErrInvalidTolerance = errors.New("quadbench: tolerance must be positive and finite")

	// ErrInvalidSampleCount indicates a Monte Carlo sample count <= 0.
	ErrInvalidSampleCount = errors.New("quadbench: sample count must be positive")

	// ErrInvalidPartition indicates a partition count < 1.
	ErrInvalidPartition = errors.New("quadbench: partition count must be at least 1")

	// ErrNonConvergence indicates the step-doubling loop hit its iteration
	// bound, or produced NaN, before consecutive estimates agreed.
	ErrNonConvergence = errors.New("quadbench: quadrature did not converge")

	// ErrUndefinedRelativeError indicates a relative error against a zero reference.
	ErrUndefinedRelativeError = errors.New("quadbench: relative error undefined for zero reference")

	// ErrInvalidRange indicates an empty or non-advancing tolerance range.
	ErrInvalidRange = errors.New("quadbench: invalid tolerance range")

	// ErrUnknownRule indicates a rule name outside the supported set.
	ErrUnknownRule = errors.New("quadbench: unknown quadrature rule")

	// ErrIntegrandShape indicates an Integrand returned the wrong number of values.
	ErrIntegrandShape = errors.New("quadbench: integrand returned mismatched value count")

	// ErrInvalidConfig indicates a configuration that failed validation.
	ErrInvalidConfig = errors.New("quadbench: invalid configuration")

	// ErrScalingFit indicates scaling measurements that cannot be fitted.
	ErrScalingFit = errors.New("quadbench: cannot fit scaling law")

	// ErrInvalidIntegrand indicates a malformed integrand description.
	ErrInvalidIntegrand = errors.New("quadbench: invalid integrand description")
)

// ConvergenceError reports where a quadrature loop stopped.
type ConvergenceError struct {
	Rule       string
	N          int     // last partition count evaluated
	Iterations int     // refinements performed
	Delta      float64 // last |estimate_new - estimate_old|
	Wrapped    error
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: stopped at n=%d after %d iterations (delta=%g): %v",
		e.Rule, e.N, e.Iterations, e.Delta, e.Wrapped)
}

func (e *ConvergenceError) Unwrap() error {
	return e.Wrapped
}
