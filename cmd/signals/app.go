package main

import (
	"context"
	"os"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/agent/consensus"
	"github.com/rxtech-lab/argo-signals/internal/collector"
	"github.com/rxtech-lab/argo-signals/internal/config"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/marketdata"
	"github.com/rxtech-lab/argo-signals/internal/pipeline"
	"github.com/rxtech-lab/argo-signals/internal/strategy"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/urfave/cli/v3"
)

// app bundles what every subcommand needs after loading the config file.
type app struct {
	config *config.Config
	log    *logger.Logger
}

func loadApp(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return &app{config: cfg, log: log}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

func (a *app) provider() (marketdata.Provider, error) {
	return marketdata.NewProvider(a.config.MarketData.Provider, os.Getenv("POLYGON_API_KEY"))
}

// pipeline builds the collector, consensus decider and analysis pipeline on
// top of provider.
func (a *app) pipeline(provider marketdata.Provider) (*pipeline.Pipeline, error) {
	c, err := collector.New(strategy.DefaultRegistry(), a.config.Signals.Strategies, a.log)
	if err != nil {
		return nil, err
	}

	decider := consensus.New(consensus.Config{
		MinConfidence:     a.config.Agent.MinConfidence,
		AllowShort:        a.config.Agent.AllowShort,
		QuantityPrecision: a.config.Agent.QuantityPrecision,
	})

	return pipeline.New(pipeline.Config{
		PrimaryInterval:  a.config.PrimaryInterval,
		LookbackBars:     a.config.MarketData.LookbackBars,
		PositionFraction: a.config.Agent.PositionFraction,
		MaxConcurrency:   pipeline.DefaultMaxConcurrency,
	}, provider, c, decider, a.log)
}

// preload copies the bars a backtest window needs into memory so each step
// only sees history closed at that step.
func (a *app) preload(ctx context.Context, src marketdata.Provider) (*marketdata.MemoryProvider, error) {
	memory := marketdata.NewMemoryProvider()
	lookback := a.config.MarketData.LookbackBars
	if lookback <= 0 {
		lookback = pipeline.DefaultLookbackBars
	}

	for _, interval := range a.config.Signals.Intervals {
		window := a.config.EndDate.Sub(a.config.StartDate)
		limit := lookback + int(window/interval.Duration()) + 1

		err := memory.Preload(ctx, src, a.config.Signals.Tickers, []types.Interval{interval}, a.config.EndDate, limit)
		if err != nil {
			return nil, err
		}
	}

	return memory, nil
}

// asOf parses the --as-of flag, defaulting to now.
func asOf(cmd *cli.Command) time.Time {
	if t := cmd.Timestamp("as-of"); !t.IsZero() {
		return t.UTC()
	}

	return time.Now().UTC()
}
