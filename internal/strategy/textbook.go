package strategy

import (
	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Textbook is the classic EMA50/EMA200 trend filter confirmed by RSI14.
type Textbook struct {
	minBars int
}

// NewTextbook returns the EMA50/EMA200/RSI14 evaluator.
func NewTextbook() Strategy {
	return &Textbook{minBars: 220}
}

func (t *Textbook) Name() string { return NameTextbook }

func (t *Textbook) MinBars() int { return t.minBars }

func (t *Textbook) Evaluate(series types.PriceSeries, _ types.Interval) types.StrategySignal {
	if series.Len() < t.minBars {
		return types.NeutralSignal()
	}

	closes := series.Closes()

	v, ok := latest(indicator.EMA(closes, 50), indicator.EMA(closes, 200), indicator.RSI(closes, 14))
	if !ok {
		return types.NeutralSignal()
	}

	ema50, ema200, rsi := v[0], v[1], v[2]
	last, _ := series.Last()
	metrics := map[string]float64{"ema50": ema50, "ema200": ema200, "rsi14": rsi}

	switch {
	case ema50 > ema200 && rsi > 50 && last.Close > ema50:
		return newSignal(types.DirectionBullish, 0.8, metrics)
	case ema50 < ema200 && rsi < 50 && last.Close < ema50:
		return newSignal(types.DirectionBearish, 0.8, metrics)
	default:
		return newSignal(types.DirectionNeutral, 0.5, metrics)
	}
}
