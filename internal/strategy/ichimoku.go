package strategy

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Ichimoku trades price against the displaced cloud, filtered by the
// tenkan/kijun cross. Confidence is cloud thickness over ATR14.
type Ichimoku struct {
	atrPeriod int
	minBars   int
}

// NewIchimoku returns the cloud evaluator. It runs from 60 bars but stays
// neutral until the displaced cloud is defined (indicator.CloudWarmup).
func NewIchimoku() Strategy {
	return &Ichimoku{atrPeriod: 14, minBars: 60}
}

func (i *Ichimoku) Name() string { return NameIchimoku }

func (i *Ichimoku) MinBars() int { return i.minBars }

func (i *Ichimoku) Evaluate(series types.PriceSeries, _ types.Interval) types.StrategySignal {
	if series.Len() < i.minBars {
		return types.NeutralSignal()
	}

	highs, lows := series.Highs(), series.Lows()
	cloud := indicator.Ichimoku(highs, lows)
	atr := indicator.ATR(highs, lows, series.Closes(), i.atrPeriod)

	v, ok := latest(cloud.Tenkan, cloud.Kijun, cloud.Top, cloud.Bottom, atr)
	if !ok {
		return types.NeutralSignal()
	}

	tenkan, kijun, top, bottom, lastATR := v[0], v[1], v[2], v[3], v[4]
	last, _ := series.Last()

	dir := cloudBias(last.Close, tenkan, kijun, top, bottom)
	thickness := math.Abs(top - bottom)
	confidence := indicator.Clamp(thickness/math.Max(indicator.Epsilon, lastATR), 0.1, 1)

	return newSignal(dir, confidence, map[string]float64{
		"tenkan":       tenkan,
		"kijun":        kijun,
		"cloud_top":    top,
		"cloud_bottom": bottom,
	})
}

// cloudBias is bullish above the cloud with tenkan over kijun and bearish
// below it with tenkan under kijun.
func cloudBias(closePrice, tenkan, kijun, top, bottom float64) types.Direction {
	switch {
	case closePrice > top && tenkan > kijun:
		return types.DirectionBullish
	case closePrice < bottom && tenkan < kijun:
		return types.DirectionBearish
	default:
		return types.DirectionNeutral
	}
}
