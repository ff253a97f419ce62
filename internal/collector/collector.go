// Package collector runs the configured strategies over an evaluation context
// and merges their outputs into one analysis record per ticker and interval.
package collector

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/strategy"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

// Collector is the Signal Collector.
type Collector struct {
	strategies []strategy.Strategy
	aggregator *strategy.MultiTimeframe
	log        *logger.Logger
}

// New resolves names against registry. The aggregator is enabled when its
// name is listed. Duplicate names are collapsed.
func New(registry *strategy.Registry, names []string, log *logger.Logger) (*Collector, error) {
	if len(names) == 0 {
		return nil, errors.New(errors.ErrCodeNoStrategies, "no strategies configured")
	}

	if log == nil {
		log = logger.NewNop()
	}

	c := &Collector{
		strategies: make([]strategy.Strategy, 0, len(names)),
		aggregator: nil,
		log:        log,
	}

	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if seen[name] {
			continue
		}

		seen[name] = true

		if name == strategy.NameMultiTimeframe {
			c.aggregator = strategy.NewMultiTimeframe()

			continue
		}

		s, err := registry.Get(name)
		if err != nil {
			return nil, err
		}

		c.strategies = append(c.strategies, s)
	}

	return c, nil
}

// Names returns the enabled strategy names in evaluation order.
func (c *Collector) Names() []string {
	names := make([]string, 0, len(c.strategies)+1)
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}

	if c.aggregator != nil {
		names = append(names, c.aggregator.Name())
	}

	return names
}

// Collect fills evalCtx.Analysis. Every ticker and interval gets a record,
// even when no strategy had enough history to run.
func (c *Collector) Collect(evalCtx *EvaluationContext) {
	for _, ticker := range evalCtx.Tickers {
		for _, interval := range evalCtx.Intervals {
			series, _ := evalCtx.SeriesFor(ticker, interval)
			rec := evalCtx.record(ticker, interval)

			for _, s := range c.strategies {
				if series.Len() < s.MinBars() {
					continue
				}

				c.put(rec, s.Name(), s.Evaluate(series, interval), ticker, interval)
			}

			evalCtx.store(ticker, interval, rec)
		}

		if c.aggregator != nil {
			c.aggregate(evalCtx, ticker)
		}
	}

	for ticker, byInterval := range evalCtx.Analysis {
		for interval, rec := range byInterval {
			rec.Signal, rec.Confidence = Summarize(rec.StrategySignals)
			byInterval[interval] = rec

			c.log.Debug("Collected analysis",
				zap.String("ticker", ticker),
				zap.String("interval", interval.String()),
				zap.String("signal", string(rec.Signal)),
				zap.Int("confidence", rec.Confidence),
				zap.Int("strategies", len(rec.StrategySignals)),
			)
		}
	}
}

// aggregate runs the multi-timeframe aggregator for ticker and stores its
// signal under the lower interval.
func (c *Collector) aggregate(evalCtx *EvaluationContext, ticker string) {
	higher, lower, ok := strategy.SelectTimeframes(evalCtx.Intervals)
	if !ok {
		if len(evalCtx.Intervals) == 0 {
			return
		}

		rec := evalCtx.record(ticker, evalCtx.Intervals[0])
		c.put(rec, strategy.NameMultiTimeframe, types.NeutralSignal(), ticker, evalCtx.Intervals[0])

		return
	}

	higherSeries, _ := evalCtx.SeriesFor(ticker, higher)
	lowerSeries, _ := evalCtx.SeriesFor(ticker, lower)

	rec := evalCtx.record(ticker, lower)
	c.put(rec, c.aggregator.Name(), c.aggregator.Evaluate(higherSeries, lowerSeries), ticker, lower)
}

// put adds sig under name unless another strategy already wrote that key.
func (c *Collector) put(rec types.AnalysisRecord, name string, sig types.StrategySignal, ticker string, interval types.Interval) {
	if _, exists := rec.StrategySignals[name]; exists {
		c.log.Warn("Strategy signal already present, keeping the first",
			zap.String("strategy", name),
			zap.String("ticker", ticker),
			zap.String("interval", interval.String()),
		)

		return
	}

	rec.StrategySignals[name] = sig
}

// Summarize reduces strategy signals to one direction by a confidence
// weighted vote. Confidence is the winning side's share of the total
// confidence. No signals, or a tie, is neutral 50.
func Summarize(signals map[string]types.StrategySignal) (types.Direction, int) {
	var bullish, bearish, total float64

	for _, sig := range signals {
		w := float64(sig.Confidence)
		total += w

		switch sig.Signal {
		case types.DirectionBullish:
			bullish += w
		case types.DirectionBearish:
			bearish += w
		}
	}

	if total == 0 || bullish == bearish {
		return types.DirectionNeutral, types.NeutralConfidence
	}

	if bullish > bearish {
		return types.DirectionBullish, int(math.Round(100 * bullish / total))
	}

	return types.DirectionBearish, int(math.Round(100 * bearish / total))
}
