// Package pipeline is the decision agent used by the live loop and the
// backtester: it fetches bars, runs the collector, derives per-ticker risk
// data and asks a Decider for the final decisions.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/agent"
	"github.com/rxtech-lab/argo-signals/internal/collector"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/marketdata"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLookbackBars     = 300
	DefaultPositionFraction = 0.2
	DefaultMaxConcurrency   = 4
)

// Config tunes data fetching and risk sizing.
type Config struct {
	PrimaryInterval types.Interval
	// LookbackBars is the number of closed bars fetched per ticker and interval.
	LookbackBars int
	// PositionFraction caps a ticker's exposure as a fraction of portfolio value.
	PositionFraction float64
	// MaxConcurrency bounds parallel fetches.
	MaxConcurrency int
}

// Pipeline implements agent.Agent.
type Pipeline struct {
	config    Config
	provider  marketdata.Provider
	collector *collector.Collector
	decider   agent.Decider
	log       *logger.Logger
}

var _ agent.Agent = (*Pipeline)(nil)

// New wires a pipeline. Zero config values fall back to the defaults.
func New(config Config, provider marketdata.Provider, c *collector.Collector, decider agent.Decider,
	log *logger.Logger,
) (*Pipeline, error) {
	if provider == nil || c == nil || decider == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "pipeline requires a provider, a collector and a decider")
	}

	if !config.PrimaryInterval.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidInterval, "invalid primary interval %q", config.PrimaryInterval)
	}

	if config.LookbackBars <= 0 {
		config.LookbackBars = DefaultLookbackBars
	}

	if config.PositionFraction <= 0 {
		config.PositionFraction = DefaultPositionFraction
	}

	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultMaxConcurrency
	}

	if log == nil {
		log = logger.NewNop()
	}

	return &Pipeline{
		config:    config,
		provider:  provider,
		collector: c,
		decider:   decider,
		log:       log,
	}, nil
}

// Analyze fetches every (ticker, interval) series closed by asOf and runs the
// collector over them. A series that fails to load is logged and left out;
// the call only fails when nothing could be loaded or ctx is done.
func (p *Pipeline) Analyze(ctx context.Context, tickers []string, intervals []types.Interval, asOf time.Time) (*collector.EvaluationContext, error) {
	type job struct {
		ticker   string
		interval types.Interval
	}

	jobs := make([]job, 0, len(tickers)*len(intervals))

	for _, ticker := range tickers {
		for _, interval := range intervals {
			jobs = append(jobs, job{ticker: ticker, interval: interval})
		}
	}

	results := make([]types.PriceSeries, len(jobs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.config.MaxConcurrency)

	for i, j := range jobs {
		group.Go(func() error {
			series, err := p.provider.FetchSeries(groupCtx, j.ticker, j.interval, asOf, p.config.LookbackBars)
			if err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}

				p.log.Warn("Failed to fetch series",
					zap.String("ticker", j.ticker),
					zap.String("interval", j.interval.String()),
					zap.Error(err),
				)

				return nil
			}

			results[i] = series

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "series fetch cancelled", err)
	}

	evalCtx := collector.NewEvaluationContext(tickers, intervals, asOf)
	loaded := 0

	for i, series := range results {
		if series.Empty() {
			continue
		}

		series.Ticker = jobs[i].ticker
		series.Interval = jobs[i].interval
		evalCtx.SetSeries(series)
		loaded++
	}

	if loaded == 0 && len(jobs) > 0 {
		return nil, errors.Newf(errors.ErrCodeNoDataFound, "no market data as of %s", asOf.Format(time.RFC3339))
	}

	p.collector.Collect(evalCtx)

	return evalCtx, nil
}

// Run implements agent.Agent.
func (p *Pipeline) Run(ctx context.Context, req agent.Request) (agent.Result, error) {
	evalCtx, err := p.Analyze(ctx, req.Tickers, req.Intervals, req.AsOf)
	if err != nil {
		return agent.Result{}, err
	}

	risk := p.Risk(evalCtx, req.Portfolio)

	decisions, err := p.decider.Decide(ctx, agent.DecisionInput{
		Tickers:         req.Tickers,
		PrimaryInterval: p.config.PrimaryInterval,
		Portfolio:       req.Portfolio,
		Analysis:        evalCtx.Analysis,
		Risk:            risk,
		AsOf:            req.AsOf,
	})
	if err != nil {
		return agent.Result{}, errors.Wrap(errors.ErrCodeAgentFailed, "decider failed", err)
	}

	return agent.Result{
		Decisions:      decisions,
		AnalystSignals: map[string]map[string]types.AnalystSignal{types.RiskManagementAgent: risk},
		Analysis:       evalCtx.Analysis,
	}, nil
}

// Risk prices each ticker at its latest primary close and sizes the room
// left under PositionFraction of the portfolio value.
func (p *Pipeline) Risk(evalCtx *collector.EvaluationContext, portfolio types.PortfolioSnapshot) map[string]types.AnalystSignal {
	prices := make(map[string]float64, len(evalCtx.Tickers))

	for _, ticker := range evalCtx.Tickers {
		series, ok := evalCtx.SeriesFor(ticker, p.config.PrimaryInterval)
		if !ok {
			continue
		}

		if last, ok := series.Last(); ok && last.Close > 0 {
			prices[ticker] = last.Close
		}
	}

	value := portfolio.Cash

	for ticker, pos := range portfolio.Positions {
		value += pos.NetShares() * prices[ticker]
	}

	risk := make(map[string]types.AnalystSignal, len(evalCtx.Tickers))

	for _, ticker := range evalCtx.Tickers {
		price, ok := prices[ticker]
		if !ok {
			risk[ticker] = types.AnalystSignal{CurrentPrice: 0, PositionLimit: 0, Reasoning: "no price data"}

			continue
		}

		pos := portfolio.Positions[ticker]
		exposure := (pos.Long + pos.Short) * price
		limit := math.Max(0, p.config.PositionFraction*value-exposure)

		risk[ticker] = types.AnalystSignal{
			CurrentPrice:  price,
			PositionLimit: limit,
			Reasoning: fmt.Sprintf("value %.2f x %.2f minus exposure %.2f",
				value, p.config.PositionFraction, exposure),
		}
	}

	return risk
}
