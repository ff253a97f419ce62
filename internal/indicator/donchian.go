package indicator

// Channel is a rolling highest-high / lowest-low band.
type Channel struct {
	Upper []float64
	Lower []float64
	Mid   []float64
}

// Donchian computes the channel over window bars, the current bar included.
func Donchian(high, low []float64, window int) Channel {
	upper := RollingMax(high, window)
	lower := RollingMin(low, window)
	mid := make([]float64, len(upper))

	for i := range upper {
		mid[i] = (upper[i] + lower[i]) / 2
	}

	return Channel{Upper: upper, Lower: lower, Mid: mid}
}

// Position returns where price sits inside the channel, 0 at the lower band
// and 1 at the upper band. The span is floored at Epsilon.
func (c Channel) Position(price float64, back int) (float64, bool) {
	upper := At(c.Upper, back)
	lower := At(c.Lower, back)

	if upper.IsNone() || lower.IsNone() {
		return 0, false
	}

	hi, lo := upper.Unwrap(), lower.Unwrap()
	span := hi - lo
	if span < Epsilon {
		span = Epsilon
	}

	return (price - lo) / span, true
}
