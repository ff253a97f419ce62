package strategy

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// MACD follows the sign of the MACD histogram. Confidence grows with the
// histogram measured in ATR units.
type MACD struct {
	fast, slow, signal int
	atrPeriod          int
	minBars            int
}

// NewMACD returns a MACD(12, 26, 9) evaluator.
func NewMACD() Strategy {
	return &MACD{fast: 12, slow: 26, signal: 9, atrPeriod: 14, minBars: 35}
}

func (m *MACD) Name() string { return NameMACD }

func (m *MACD) MinBars() int { return m.minBars }

func (m *MACD) Evaluate(series types.PriceSeries, _ types.Interval) types.StrategySignal {
	if series.Len() < m.minBars {
		return types.NeutralSignal()
	}

	closes := series.Closes()
	res := indicator.MACD(closes, m.fast, m.slow, m.signal)
	atr := indicator.ATR(series.Highs(), series.Lows(), closes, m.atrPeriod)

	v, ok := latest(res.MACD, res.Signal, res.Histogram, atr)
	if !ok {
		return types.NeutralSignal()
	}

	line, sig, hist, lastATR := v[0], v[1], v[2], v[3]
	metrics := map[string]float64{"macd": line, "signal": sig, "histogram": hist}
	confidence := indicator.Clamp(0.5+math.Abs(hist)/math.Max(indicator.Epsilon, lastATR), 0.1, 1)

	switch {
	case hist > 0:
		return newSignal(types.DirectionBullish, confidence, metrics)
	case hist < 0:
		return newSignal(types.DirectionBearish, confidence, metrics)
	default:
		return newSignal(types.DirectionNeutral, 0.5, metrics)
	}
}
