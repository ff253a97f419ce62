package strategy

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// SMC reads market structure from the last two swing highs and lows.
// Higher highs with higher lows is bullish, lower lows with lower highs bearish.
type SMC struct {
	minBars int
}

// NewSMC returns the market structure evaluator.
func NewSMC() Strategy {
	return &SMC{minBars: 20}
}

func (s *SMC) Name() string { return NameSMC }

func (s *SMC) MinBars() int { return s.minBars }

func (s *SMC) Evaluate(series types.PriceSeries, _ types.Interval) types.StrategySignal {
	if series.Len() < s.minBars {
		return types.NeutralSignal()
	}

	highs, lows := pivots(series.Highs(), series.Lows())
	if len(highs) < 2 || len(lows) < 2 {
		return types.NeutralSignal()
	}

	lastHigh, prevHigh := highs[len(highs)-1], highs[len(highs)-2]
	lastLow, prevLow := lows[len(lows)-1], lows[len(lows)-2]

	switch {
	case lastHigh > prevHigh && lastLow > prevLow:
		return newSignal(types.DirectionBullish, 0.7, map[string]float64{"hh": 1, "hl": 1})
	case lastLow < prevLow && lastHigh < prevHigh:
		return newSignal(types.DirectionBearish, 0.7, map[string]float64{"ll": 1, "lh": 1})
	default:
		return types.NeutralSignal()
	}
}

// pivots returns swing highs (higher than both neighbours) and swing lows
// (lower than both neighbours) in time order.
func pivots(high, low []float64) (swingHighs, swingLows []float64) {
	for i := 1; i < len(high)-1; i++ {
		if high[i-1] < high[i] && high[i+1] < high[i] {
			swingHighs = append(swingHighs, high[i])
		}

		if low[i-1] > low[i] && low[i+1] > low[i] {
			swingLows = append(swingLows, low[i])
		}
	}

	return swingHighs, swingLows
}
