package indicator

import "math"

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|). The first bar
// has no previous close and uses high-low.
func TrueRange(high, low, closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		tr := high[i] - low[i]
		if i > 0 {
			tr = math.Max(tr, math.Abs(high[i]-closes[i-1]))
			tr = math.Max(tr, math.Abs(low[i]-closes[i-1]))
		}

		out[i] = tr
	}

	return out
}

// ATR is the rolling mean of the true range over period.
func ATR(high, low, closes []float64, period int) []float64 {
	return SMA(TrueRange(high, low, closes), period)
}
