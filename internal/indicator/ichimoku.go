package indicator

import "math"

// Ichimoku periods.
const (
	TenkanPeriod  = 9
	KijunPeriod   = 26
	SenkouBPeriod = 52
	Displacement  = 26
)

// Cloud is the Ichimoku conversion/base lines and the displaced cloud.
type Cloud struct {
	Tenkan []float64
	Kijun  []float64
	SpanA  []float64
	SpanB  []float64
	Top    []float64
	Bottom []float64
}

// Ichimoku computes the cloud with the standard 9/26/52 periods displaced 26
// bars forward. Top and Bottom are only defined where both spans are.
func Ichimoku(high, low []float64) Cloud {
	tenkan := Midpoint(high, low, TenkanPeriod)
	kijun := Midpoint(high, low, KijunPeriod)

	base := make([]float64, len(tenkan))
	for i := range tenkan {
		base[i] = (tenkan[i] + kijun[i]) / 2
	}

	spanA := Shift(base, Displacement)
	spanB := Shift(Midpoint(high, low, SenkouBPeriod), Displacement)

	top := nanSlice(len(spanA))
	bottom := nanSlice(len(spanA))

	for i := range spanA {
		if math.IsNaN(spanA[i]) || math.IsNaN(spanB[i]) {
			continue
		}

		top[i] = math.Max(spanA[i], spanB[i])
		bottom[i] = math.Min(spanA[i], spanB[i])
	}

	return Cloud{
		Tenkan: tenkan,
		Kijun:  kijun,
		SpanA:  spanA,
		SpanB:  spanB,
		Top:    top,
		Bottom: bottom,
	}
}

// CloudWarmup is the number of bars needed before the cloud is defined.
const CloudWarmup = SenkouBPeriod + Displacement
