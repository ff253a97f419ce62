package strategy

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// RSI classifies the RSI14 regime and scores it by distance from 50 and by
// agreement with RSI28.
type RSI struct {
	fast    int
	slow    int
	minBars int
}

// NewRSI returns the RSI14/RSI28 regime evaluator.
func NewRSI() Strategy {
	return &RSI{fast: 14, slow: 28, minBars: 30}
}

func (r *RSI) Name() string { return NameRSI }

func (r *RSI) MinBars() int { return r.minBars }

func (r *RSI) Evaluate(series types.PriceSeries, _ types.Interval) types.StrategySignal {
	if series.Len() < r.minBars {
		return types.NeutralSignal()
	}

	closes := series.Closes()

	v, ok := latest(indicator.RSI(closes, r.fast), indicator.RSI(closes, r.slow))
	if !ok {
		return types.NeutralSignal()
	}

	fast, slow := v[0], v[1]

	dir := types.DirectionNeutral

	switch {
	case fast >= 60 && fast >= slow:
		dir = types.DirectionBullish
	case fast <= 40 && fast <= slow:
		dir = types.DirectionBearish
	}

	dist := math.Abs(fast-50) / 50
	agreement := 0.5

	if (dir == types.DirectionBullish && slow >= 50) || (dir == types.DirectionBearish && slow <= 50) {
		agreement = 1
	}

	confidence := indicator.Clamp(0.6*dist+0.4*agreement, 0.1, 1)

	return newSignal(dir, confidence, map[string]float64{
		"rsi14":      fast,
		"rsi28":      slow,
		"overbought": flag(fast >= 70),
		"oversold":   flag(fast <= 30),
	})
}
