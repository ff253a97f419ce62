package strategy

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Volume looks for volume spikes confirmed by price relative to EMA20.
type Volume struct {
	window         int
	spikeThreshold float64
	minBars        int
}

// NewVolume returns the volume spike evaluator.
func NewVolume() Strategy {
	return &Volume{window: 20, spikeThreshold: 1.5, minBars: 30}
}

func (v *Volume) Name() string { return NameVolume }

func (v *Volume) MinBars() int { return v.minBars }

func (v *Volume) Evaluate(series types.PriceSeries, _ types.Interval) types.StrategySignal {
	if series.Len() < v.minBars {
		return types.NeutralSignal()
	}

	volumes := series.Volumes()
	closes := series.Closes()

	vals, ok := latest(indicator.SMA(volumes, v.window), indicator.EMA(closes, v.window))
	if !ok {
		return types.NeutralSignal()
	}

	volMA, ema20 := vals[0], vals[1]
	last, _ := series.Last()
	spike := last.Volume / math.Max(indicator.Epsilon, volMA)
	metrics := map[string]float64{"vol_spike": spike}

	switch {
	case spike > v.spikeThreshold && last.Close > ema20:
		return newSignal(types.DirectionBullish, 0.7, metrics)
	case spike > v.spikeThreshold && last.Close < ema20:
		return newSignal(types.DirectionBearish, 0.7, metrics)
	default:
		return newSignal(types.DirectionNeutral, 0.5, metrics)
	}
}
