package strategy

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// SuperTrend compares the close with the basic ATR bands around hl2.
type SuperTrend struct {
	period     int
	multiplier float64
	minBars    int
}

// NewSuperTrend returns a SuperTrend(10, 3) evaluator.
func NewSuperTrend() Strategy {
	return &SuperTrend{period: 10, multiplier: 3, minBars: 50}
}

func (s *SuperTrend) Name() string { return NameSuperTrend }

func (s *SuperTrend) MinBars() int { return s.minBars }

func (s *SuperTrend) Evaluate(series types.PriceSeries, _ types.Interval) types.StrategySignal {
	if series.Len() < s.minBars {
		return types.NeutralSignal()
	}

	bands, ok := superTrendBands(series, s.period, s.multiplier)
	if !ok {
		return types.NeutralSignal()
	}

	last, _ := series.Last()
	atr := math.Max(indicator.Epsilon, bands.atr)
	metrics := map[string]float64{
		"atr":         bands.atr,
		"upper_basic": bands.upper,
		"lower_basic": bands.lower,
	}

	switch {
	case last.Close > bands.lower:
		return newSignal(types.DirectionBullish, indicator.Clamp((last.Close-bands.lower)/atr, 0.1, 1), metrics)
	case last.Close < bands.upper:
		return newSignal(types.DirectionBearish, indicator.Clamp((bands.upper-last.Close)/atr, 0.1, 1), metrics)
	default:
		return newSignal(types.DirectionNeutral, 0.5, metrics)
	}
}

type basicBands struct {
	atr   float64
	upper float64
	lower float64
}

// superTrendBands returns hl2 +- multiplier*ATR at the latest bar.
func superTrendBands(series types.PriceSeries, period int, multiplier float64) (basicBands, bool) {
	atrSeries := indicator.ATR(series.Highs(), series.Lows(), series.Closes(), period)

	v, ok := latest(atrSeries)
	if !ok {
		return basicBands{}, false
	}

	last, _ := series.Last()
	hl2 := (last.High + last.Low) / 2

	return basicBands{
		atr:   v[0],
		upper: hl2 + multiplier*v[0],
		lower: hl2 - multiplier*v[0],
	}, true
}
