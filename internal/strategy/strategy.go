// Package strategy turns one ticker's price history into directional signals.
//
// Every evaluator follows the same rules: below MinBars, or when any indicator
// value it needs is undefined at the latest bar, it returns types.NeutralSignal.
// Evaluators never fail; the worst they can say is "neutral, 50".
package strategy

import (
	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Built-in strategy names as used in configuration.
const (
	NameDonchian       = "donchian"
	NameVolume         = "volume"
	NameSuperTrend     = "supertrend"
	NameIchimoku       = "ichimoku"
	NameRSI            = "rsi"
	NameTextbook       = "textbook"
	NameSMC            = "smc"
	NameMACD           = "macd"
	NameMultiTimeframe = "mtf_trend_entry"
)

// Strategy evaluates one price series on one interval.
type Strategy interface {
	// Name is the key the signal is stored under in an analysis record.
	Name() string
	// MinBars is the shortest history the strategy will look at.
	MinBars() int
	// Evaluate returns the strategy's view of the latest bar.
	Evaluate(series types.PriceSeries, interval types.Interval) types.StrategySignal
}

// newSignal builds a signal from a fractional confidence.
func newSignal(dir types.Direction, confidence float64, metrics map[string]float64) types.StrategySignal {
	if metrics == nil {
		metrics = map[string]float64{}
	}

	return types.StrategySignal{
		Signal:     dir,
		Confidence: types.ConfidencePercent(confidence),
		Metrics:    metrics,
		Labels:     nil,
	}
}

// latest reads the last value of every series. ok is false as soon as one of
// them is undefined.
func latest(series ...[]float64) (values []float64, ok bool) {
	values = make([]float64, len(series))

	for i, s := range series {
		v := indicator.Last(s)
		if v.IsNone() {
			return nil, false
		}

		values[i] = v.Unwrap()
	}

	return values, true
}

// flag encodes a boolean metric.
func flag(b bool) float64 {
	if b {
		return 1
	}

	return 0
}
