package indicator

import "math"

// SMA is the simple rolling mean over window. A window containing an
// undefined value is itself undefined.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}

	sum := 0.0
	valid := 0

	for i, v := range values {
		if !math.IsNaN(v) {
			sum += v
			valid++
		}

		if i >= window {
			if old := values[i-window]; !math.IsNaN(old) {
				sum -= old
				valid--
			}
		}

		if i >= window-1 && valid == window {
			out[i] = sum / float64(window)
		}
	}

	return out
}

// RollingMax is the highest value over the trailing window.
func RollingMax(values []float64, window int) []float64 {
	return rollingExtreme(values, window, math.Max)
}

// RollingMin is the lowest value over the trailing window.
func RollingMin(values []float64, window int) []float64 {
	return rollingExtreme(values, window, math.Min)
}

func rollingExtreme(values []float64, window int, pick func(a, b float64) float64) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		ext := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			ext = pick(ext, values[j])
		}

		out[i] = ext
	}

	return out
}
