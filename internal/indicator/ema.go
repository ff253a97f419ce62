package indicator

// EMA is the exponential moving average with alpha = 2/(period+1), the pandas
// ewm(span, adjust=False) recursion. It is seeded with the simple average of the
// first period defined values, so the first defined output sits period-1
// positions after the first defined input.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}

	start := firstDefined(values)
	seedAt := start + period - 1

	if seedAt >= len(values) {
		return out
	}

	sma := 0.0
	for i := start; i <= seedAt; i++ {
		sma += values[i]
	}

	sma /= float64(period)
	out[seedAt] = sma

	alpha := 2.0 / float64(period+1)
	ema := sma

	for i := seedAt + 1; i < len(values); i++ {
		ema = values[i]*alpha + ema*(1-alpha)
		out[i] = ema
	}

	return out
}
