package types

import "math"

// Direction is the directional call of a strategy.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// NeutralConfidence is reported whenever a strategy has nothing to say.
const NeutralConfidence = 50

// StrategySignal is the output of one evaluator for one ticker and interval.
type StrategySignal struct {
	Signal     Direction          `json:"signal" yaml:"signal"`
	Confidence int                `json:"confidence" yaml:"confidence"`
	Metrics    map[string]float64 `json:"metrics" yaml:"metrics"`
	// Labels carries categorical context that has no numeric form,
	// e.g. the aggregator's bias and entry type.
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// NeutralSignal is the fallback for short or undefined history.
func NeutralSignal() StrategySignal {
	return StrategySignal{
		Signal:     DirectionNeutral,
		Confidence: NeutralConfidence,
		Metrics:    map[string]float64{},
		Labels:     nil,
	}
}

// ConfidencePercent clamps a fractional confidence to [0,1] and rescales it
// to an integer percentage. NaN maps to 0.
func ConfidencePercent(c float64) int {
	if math.IsNaN(c) {
		return 0
	}

	c = math.Max(0, math.Min(1, c))

	return int(math.Round(c * 100))
}

// AnalysisRecord merges every strategy's output for one ticker and interval.
type AnalysisRecord struct {
	Signal          Direction                 `json:"signal"`
	Confidence      int                       `json:"confidence"`
	StrategySignals map[string]StrategySignal `json:"strategy_signals"`
}

// TechnicalAnalysis maps ticker -> interval -> record.
type TechnicalAnalysis map[string]map[Interval]AnalysisRecord

// Record returns the record for ticker and interval.
func (t TechnicalAnalysis) Record(ticker string, interval Interval) (AnalysisRecord, bool) {
	byInterval, ok := t[ticker]
	if !ok {
		return AnalysisRecord{}, false
	}

	rec, ok := byInterval[interval]

	return rec, ok
}
