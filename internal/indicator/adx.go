package indicator

import "math"

// DirectionalIndex holds the ADX line with its +DI and -DI components.
type DirectionalIndex struct {
	ADX     []float64
	PlusDI  []float64
	MinusDI []float64
}

// ADX is the average directional index. Directional movement and true range
// are smoothed with EMA over period, and so is DX. The first ADX value is
// defined at index 2*period-1.
func ADX(high, low, closes []float64, period int) DirectionalIndex {
	n := len(closes)
	plusDM := nanSlice(n)
	minusDM := nanSlice(n)
	tr := TrueRange(high, low, closes)

	if n > 0 {
		tr[0] = math.NaN()
	}

	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		plusDM[i] = 0
		minusDM[i] = 0

		if up > down && up > 0 {
			plusDM[i] = up
		}

		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	smTR := EMA(tr, period)
	smPlus := EMA(plusDM, period)
	smMinus := EMA(minusDM, period)

	plusDI := nanSlice(n)
	minusDI := nanSlice(n)
	dx := nanSlice(n)

	for i := 0; i < n; i++ {
		if math.IsNaN(smTR[i]) {
			continue
		}

		denom := math.Max(Epsilon, smTR[i])
		plusDI[i] = 100 * smPlus[i] / denom
		minusDI[i] = 100 * smMinus[i] / denom

		sum := plusDI[i] + minusDI[i]
		if sum == 0 {
			dx[i] = 0
		} else {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
		}
	}

	return DirectionalIndex{
		ADX:     EMA(dx, period),
		PlusDI:  plusDI,
		MinusDI: minusDI,
	}
}
