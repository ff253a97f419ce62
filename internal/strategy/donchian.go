package strategy

import (
	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Donchian reports channel breakouts. The channel is built from the window
// bars before the latest one, so the latest close can sit outside it.
type Donchian struct {
	window  int
	minBars int
}

// NewDonchian returns a 20-bar channel breakout evaluator.
func NewDonchian() Strategy {
	return &Donchian{window: 20, minBars: 25}
}

func (d *Donchian) Name() string { return NameDonchian }

func (d *Donchian) MinBars() int { return d.minBars }

func (d *Donchian) Evaluate(series types.PriceSeries, _ types.Interval) types.StrategySignal {
	if series.Len() < d.minBars {
		return types.NeutralSignal()
	}

	ch := priorChannel(series, d.window)

	v, ok := latest(ch.Upper, ch.Lower, ch.Mid)
	if !ok {
		return types.NeutralSignal()
	}

	upper, lower, mid := v[0], v[1], v[2]
	last, _ := series.Last()

	return ChannelSignal(last.Close, upper, lower, mid)
}

// ChannelSignal applies the breakout rule to a close and a channel.
func ChannelSignal(closePrice, upper, lower, mid float64) types.StrategySignal {
	metrics := map[string]float64{"upper": upper, "lower": lower, "mid": mid}

	switch {
	case closePrice > upper:
		return newSignal(types.DirectionBullish, 0.8, metrics)
	case closePrice < lower:
		return newSignal(types.DirectionBearish, 0.8, metrics)
	default:
		return newSignal(types.DirectionNeutral, 0.5, metrics)
	}
}

// priorChannel is the Donchian channel of the previous window bars, aligned so
// that index i describes bars i-window..i-1.
func priorChannel(series types.PriceSeries, window int) indicator.Channel {
	ch := indicator.Donchian(series.Highs(), series.Lows(), window)

	return indicator.Channel{
		Upper: indicator.Shift(ch.Upper, 1),
		Lower: indicator.Shift(ch.Lower, 1),
		Mid:   indicator.Shift(ch.Mid, 1),
	}
}
