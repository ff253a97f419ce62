package collector

import (
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// EvaluationContext is the state of one evaluation cycle. It is created per
// cycle, filled with price series, handed to the Collector and then read by
// the decision step.
type EvaluationContext struct {
	Tickers   []string
	Intervals []types.Interval
	AsOf      time.Time
	Series    map[string]map[types.Interval]types.PriceSeries
	Analysis  types.TechnicalAnalysis
}

// NewEvaluationContext creates an empty context for the given universe.
func NewEvaluationContext(tickers []string, intervals []types.Interval, asOf time.Time) *EvaluationContext {
	return &EvaluationContext{
		Tickers:   tickers,
		Intervals: intervals,
		AsOf:      asOf,
		Series:    make(map[string]map[types.Interval]types.PriceSeries),
		Analysis:  make(types.TechnicalAnalysis),
	}
}

// SetSeries stores series under its own ticker and interval.
func (c *EvaluationContext) SetSeries(series types.PriceSeries) {
	byInterval, ok := c.Series[series.Ticker]
	if !ok {
		byInterval = make(map[types.Interval]types.PriceSeries)
		c.Series[series.Ticker] = byInterval
	}

	byInterval[series.Interval] = series
}

// SeriesFor returns the stored series, or an empty one tagged with ticker and
// interval when nothing was fetched.
func (c *EvaluationContext) SeriesFor(ticker string, interval types.Interval) (types.PriceSeries, bool) {
	if byInterval, ok := c.Series[ticker]; ok {
		if series, ok := byInterval[interval]; ok {
			return series, true
		}
	}

	return types.NewPriceSeries(ticker, interval, nil), false
}

// record returns the analysis record for ticker and interval, creating it on
// first use.
func (c *EvaluationContext) record(ticker string, interval types.Interval) types.AnalysisRecord {
	byInterval, ok := c.Analysis[ticker]
	if !ok {
		byInterval = make(map[types.Interval]types.AnalysisRecord)
		c.Analysis[ticker] = byInterval
	}

	rec, ok := byInterval[interval]
	if !ok {
		rec = types.AnalysisRecord{
			Signal:          types.DirectionNeutral,
			Confidence:      types.NeutralConfidence,
			StrategySignals: make(map[string]types.StrategySignal),
		}
		byInterval[interval] = rec
	}

	return rec
}

func (c *EvaluationContext) store(ticker string, interval types.Interval, rec types.AnalysisRecord) {
	c.record(ticker, interval)
	c.Analysis[ticker][interval] = rec
}
