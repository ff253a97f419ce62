package backtest

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/agent"
	"github.com/rxtech-lab/argo-signals/internal/journal"
	"github.com/rxtech-lab/argo-signals/internal/ledger"
	"github.com/rxtech-lab/argo-signals/internal/live"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

// Lifecycle callback types for a backtest run.
// Callbacks with an error return abort the run when they return an error.

// OnBacktestStartCallback is called once the step schedule is known.
type OnBacktestStartCallback func(runID string, totalSteps int) error

// OnBacktestEndCallback is called when the run finishes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnProcessDataCallback is called after each replayed step.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for a backtest.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnProcessData   *OnProcessDataCallback
}

// Config describes one replay window.
type Config struct {
	RunID             string
	Tickers           []string
	Intervals         []types.Interval
	PrimaryInterval   types.Interval
	Start             time.Time
	End               time.Time
	InitialCash       float64
	MarginRequirement float64
	QuantityPrecision int
}

// Result is the outcome of a run.
type Result struct {
	RunID     string                    `yaml:"run_id" json:"run_id"`
	Metrics   Metrics                   `yaml:"metrics" json:"metrics"`
	Snapshots []types.ValuationSnapshot `yaml:"-" json:"snapshots"`
	Trades    []types.TradeRecord       `yaml:"-" json:"trades"`
}

// Steps returns the primary-interval close times inside [start, end].
func Steps(start, end time.Time, interval types.Interval) []time.Time {
	steps := []time.Time{}
	if !interval.Valid() || end.Before(start) {
		return steps
	}

	step := interval.Floor(start)
	if step.Before(start) {
		step = step.Add(interval.Duration())
	}

	for ; !step.After(end); step = step.Add(interval.Duration()) {
		steps = append(steps, step)
	}

	return steps
}

// Run replays the window through the same cycle the live loop uses. The
// agent must only see data closed at each step, which the pipeline gets
// from a marketdata.MemoryProvider. Steps where the agent fails are skipped.
func Run(ctx context.Context, config Config, decisionAgent agent.Agent, recorder journal.Recorder,
	log *logger.Logger, callbacks LifecycleCallbacks,
) (result Result, err error) {
	defer func() {
		if callbacks.OnBacktestEnd != nil {
			(*callbacks.OnBacktestEnd)(err)
		}
	}()

	if log == nil {
		log = logger.NewNop()
	}

	if !config.End.After(config.Start) {
		return Result{}, errors.Newf(errors.ErrCodeBacktestBadWindow, "end %s is not after start %s",
			config.End.Format(time.RFC3339), config.Start.Format(time.RFC3339))
	}

	steps := Steps(config.Start, config.End, config.PrimaryInterval)
	if len(steps) == 0 {
		return Result{}, errors.Newf(errors.ErrCodeBacktestNoData, "no %s closes between start and end", config.PrimaryInterval)
	}

	book, err := ledger.New(config.InitialCash, config.MarginRequirement, config.QuantityPrecision)
	if err != nil {
		return Result{}, err
	}

	if config.RunID == "" {
		config.RunID = journal.NewRunID()
	}

	loop, err := live.NewLoop(live.Config{
		RunID:           config.RunID,
		Tickers:         config.Tickers,
		Intervals:       config.Intervals,
		PrimaryInterval: config.PrimaryInterval,
		PollInterval:    0,
		NotifyEnabled:   false,
		TradeCooldown:   0,
		SummaryInterval: 0,
	}, decisionAgent, book, nil, recorder, log)
	if err != nil {
		return Result{}, err
	}

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(config.RunID, len(steps)); err != nil {
			return Result{}, err
		}
	}

	equity := make([]float64, 0, len(steps))
	trades := []types.TradeRecord{}
	skipped := 0

	for i, step := range steps {
		if ctx.Err() != nil {
			return Result{}, errors.Wrapf(errors.ErrCodeBacktestCanceled, ctx.Err(), "backtest canceled at step %d of %d", i+1, len(steps))
		}

		report, cycleErr := loop.RunCycle(ctx, step)
		if cycleErr != nil {
			skipped++

			log.Debug("Backtest step skipped", zap.Time("step", step), zap.Error(cycleErr))
		} else {
			equity = append(equity, book.Equity(report.Prices))
			trades = append(trades, report.Trades...)
		}

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(i+1, len(steps)); err != nil {
				return Result{}, err
			}
		}
	}

	if len(equity) == 0 {
		return Result{}, errors.Newf(errors.ErrCodeBacktestNoData, "all %d steps were skipped", len(steps))
	}

	metrics := ComputeMetrics(config.InitialCash, equity, config.PrimaryInterval)
	metrics.Steps = len(steps)
	metrics.SkippedSteps = skipped
	metrics.Trades = countExecuted(trades)

	log.Info("Backtest finished",
		zap.String("run_id", config.RunID),
		zap.Int("steps", len(steps)),
		zap.Int("skipped", skipped),
		zap.Float64("total_return", metrics.TotalReturn),
	)

	return Result{
		RunID:     config.RunID,
		Metrics:   metrics,
		Snapshots: book.History(),
		Trades:    trades,
	}, nil
}

func countExecuted(trades []types.TradeRecord) int {
	count := 0

	for _, trade := range trades {
		if trade.ExecutedQty > 0 {
			count++
		}
	}

	return count
}
