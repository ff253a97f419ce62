package indicator

// RSI is the relative strength index on a 0-100 scale using rolling mean
// gains and losses over period price changes. The first defined value is at
// index period. A window with no losses reads 100, a flat window reads 50.
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	gains := nanSlice(len(closes))
	losses := nanSlice(len(closes))

	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gains[i] = 0
		losses[i] = 0

		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	avgGain := SMA(gains, period)
	avgLoss := SMA(losses, period)

	for i := period; i < len(closes); i++ {
		g, l := avgGain[i], avgLoss[i]

		switch {
		case l == 0 && g == 0:
			out[i] = 50
		case l == 0:
			out[i] = 100
		default:
			rs := g / l
			out[i] = 100 - 100/(1+rs)
		}
	}

	return out
}
