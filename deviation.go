package quadbench

import (
	"fmt"
	"math"
)

// ErrorPair is the distance between an estimate and a reference value.
type ErrorPair struct {
	Absolute float64
	Relative float64
}

// Deviation returns |result - expected| and that distance divided by
// |expected|.
//
// When expected is exactly zero the relative error has no meaning: the
// pair carries the absolute error, Relative is NaN, and the error is
// ErrUndefinedRelativeError. Callers that only need the absolute part can
// test for that sentinel and keep going.
func Deviation(result, expected float64) (ErrorPair, error) {
	abs := math.Abs(result - expected)
	if expected == 0 {
		return ErrorPair{Absolute: abs, Relative: math.NaN()},
			fmt.Errorf("deviation of %g: %w", result, ErrUndefinedRelativeError)
	}
	return ErrorPair{Absolute: abs, Relative: abs / math.Abs(expected)}, nil
}
