// Package indicator computes derived series from price columns.
//
// Every function returns a slice with the same length as its input. Positions
// without enough history hold NaN, and callers read the most recent value with
// Last, which reports undefined values as optional.None instead of zero.
package indicator

import (
	"math"

	"github.com/moznion/go-optional"
)

// Epsilon floors denominators in volatility ratios.
const Epsilon = 1e-8

// Last returns the final value of values, or None when the slice is empty or
// the value is undefined.
func Last(values []float64) optional.Option[float64] {
	return At(values, 1)
}

// At returns the value back positions from the end (1 is the last element).
func At(values []float64, back int) optional.Option[float64] {
	i := len(values) - back
	if back < 1 || i < 0 || math.IsNaN(values[i]) {
		return optional.None[float64]()
	}

	return optional.Some(values[i])
}

// nanSlice returns n NaNs.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// firstDefined returns the index of the first non-NaN value, or len(values).
func firstDefined(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}

	return len(values)
}

// Shift moves values forward by n positions, filling the head with NaN.
func Shift(values []float64, n int) []float64 {
	out := nanSlice(len(values))
	for i := n; i < len(values); i++ {
		if i-n >= 0 {
			out[i] = values[i-n]
		}
	}

	return out
}

// Midpoint returns (RollingMax(high) + RollingMin(low)) / 2 over window.
func Midpoint(high, low []float64, window int) []float64 {
	hi := RollingMax(high, window)
	lo := RollingMin(low, window)
	out := make([]float64, len(hi))

	for i := range hi {
		out[i] = (hi[i] + lo[i]) / 2
	}

	return out
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
