package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-signals/internal/backtest"
	"github.com/rxtech-lab/argo-signals/internal/config"
	"github.com/rxtech-lab/argo-signals/internal/journal"
	"github.com/rxtech-lab/argo-signals/internal/ledger"
	"github.com/rxtech-lab/argo-signals/internal/live"
	"github.com/rxtech-lab/argo-signals/internal/notifier"
	"github.com/rxtech-lab/argo-signals/internal/version"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// liveAction runs the scheduling loop until SIGINT or SIGTERM.
func liveAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.config

	provider, err := a.provider()
	if err != nil {
		return err
	}

	p, err := a.pipeline(provider)
	if err != nil {
		return err
	}

	book, err := ledger.New(cfg.InitialCash, cfg.MarginRequirement, cfg.Agent.QuantityPrecision)
	if err != nil {
		return err
	}

	store, err := journal.Open(cfg.Journal, a.log)
	if err != nil {
		return err
	}
	defer store.Close()

	loop, err := live.NewLoop(live.Config{
		RunID:           journal.NewRunID(),
		Tickers:         cfg.Signals.Tickers,
		Intervals:       cfg.Signals.Intervals,
		PrimaryInterval: cfg.PrimaryInterval,
		PollInterval:    cfg.PollInterval(),
		NotifyEnabled:   cfg.NotifyEnabled,
		TradeCooldown:   cfg.TradeCooldown(),
		SummaryInterval: cfg.SummaryInterval(),
	}, p, book, notifier.NewTelegramNotifier(notifier.TelegramConfigFromEnv(), a.log), store, a.log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	onCycle := live.OnCycleCompleteCallback(func(report live.CycleReport) error {
		fmt.Println(TitleStyle.Render(report.Time.Format("2006-01-02 15:04:05 MST")))
		fmt.Println(RenderDecisions(report.Decisions, cfg.ShowReasoning))

		return nil
	})
	onStop := live.OnLoopStopCallback(func(err error) {
		a.log.Info("Live loop stopped", zap.Error(err))
	})

	return loop.Run(ctx, live.Callbacks{OnCycleComplete: &onCycle, OnError: nil, OnLoopStop: &onStop})
}

// backtestAction replays the configured window against preloaded history.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.config

	src, err := a.provider()
	if err != nil {
		return err
	}

	history, err := a.preload(ctx, src)
	if err != nil {
		return err
	}

	p, err := a.pipeline(history)
	if err != nil {
		return err
	}

	store, err := journal.Open(cfg.Journal, a.log)
	if err != nil {
		return err
	}
	defer store.Close()

	var bar *progressbar.ProgressBar

	onStart := backtest.OnBacktestStartCallback(func(runID string, totalSteps int) error {
		bar = progressbar.NewOptions(totalSteps,
			progressbar.OptionSetDescription("Backtesting "+runID),
			progressbar.OptionShowCount(),
		)

		return nil
	})
	onProcess := backtest.OnProcessDataCallback(func(current, _ int) error {
		return bar.Set(current)
	})

	result, err := backtest.Run(ctx, backtest.Config{
		RunID:             "",
		Tickers:           cfg.Signals.Tickers,
		Intervals:         cfg.Signals.Intervals,
		PrimaryInterval:   cfg.PrimaryInterval,
		Start:             cfg.StartDate,
		End:               cfg.EndDate,
		InitialCash:       cfg.InitialCash,
		MarginRequirement: cfg.MarginRequirement,
		QuantityPrecision: cfg.Agent.QuantityPrecision,
	}, p, store, a.log, backtest.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnBacktestEnd:   nil,
		OnProcessData:   &onProcess,
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(RenderMetrics(result))

	if out := cmd.String("output"); out != "" {
		return backtest.WriteResult(out, result)
	}

	return nil
}

// analyzeAction runs a single analysis pass and prints the signal table.
func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	provider, err := a.provider()
	if err != nil {
		return err
	}

	p, err := a.pipeline(provider)
	if err != nil {
		return err
	}

	evalCtx, err := p.Analyze(ctx, a.config.Signals.Tickers, a.config.Signals.Intervals, asOf(cmd))
	if err != nil {
		return err
	}

	fmt.Println(RenderAnalysis(evalCtx, a.config.Signals.Tickers, a.config.Signals.Intervals))

	return nil
}

func schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	configFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the YAML settings file",
			Value:   "config.yaml",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Override log_level from the settings file",
		},
	}

	cmd := &cli.Command{
		Name:    "signals",
		Usage:   "Multi-timeframe trading signals with a simulated portfolio",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:   "live",
				Usage:  "Run the live scheduling loop",
				Flags:  configFlags,
				Action: liveAction,
			},
			{
				Name:  "backtest",
				Usage: "Replay the configured window and report metrics",
				Flags: append(configFlags, &cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "Write the result as YAML to `FILE`",
				}),
				Action: backtestAction,
			},
			{
				Name:  "analyze",
				Usage: "Run one analysis pass and print every strategy signal",
				Flags: append(configFlags, &cli.TimestampFlag{
					Name:  "as-of",
					Usage: "Evaluate as of `TIME` instead of now",
					Config: cli.TimestampConfig{
						Layouts: []string{"2006-01-02", "2006-01-02T15:04:05Z07:00"},
					},
				}),
				Action: analyzeAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the settings file",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
