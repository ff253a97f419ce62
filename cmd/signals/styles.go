package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-signals/internal/backtest"
	"github.com/rxtech-lab/argo-signals/internal/collector"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for secondary text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	BullishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	BearishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// FormatDirection colors a direction by its sign.
func FormatDirection(d types.Direction) string {
	switch d {
	case types.DirectionBullish:
		return BullishStyle.Render(string(d))
	case types.DirectionBearish:
		return BearishStyle.Render(string(d))
	default:
		return HelpStyle.Render(string(d))
	}
}

// RenderAnalysis lays out one row per ticker, interval and strategy.
func RenderAnalysis(evalCtx *collector.EvaluationContext, tickers []string, intervals []types.Interval) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TICKER", "INTERVAL", "STRATEGY", "SIGNAL", "CONFIDENCE")

	for _, ticker := range tickers {
		for _, interval := range intervals {
			rec, ok := evalCtx.Analysis.Record(ticker, interval)
			if !ok {
				continue
			}

			t.Row(ticker, interval.String(), "overall", FormatDirection(rec.Signal), fmt.Sprintf("%d", rec.Confidence))

			names := make([]string, 0, len(rec.StrategySignals))
			for name := range rec.StrategySignals {
				names = append(names, name)
			}

			sort.Strings(names)

			for _, name := range names {
				sig := rec.StrategySignals[name]
				t.Row("", "", name, FormatDirection(sig.Signal), fmt.Sprintf("%d", sig.Confidence))
			}
		}
	}

	return t.Render()
}

// RenderDecisions lists each ticker's decision, with reasoning when asked.
func RenderDecisions(decisions map[string]types.Decision, showReasoning bool) string {
	headers := []string{"TICKER", "ACTION", "QUANTITY", "CONFIDENCE"}
	if showReasoning {
		headers = append(headers, "REASONING")
	}

	t := table.New().Border(lipgloss.NormalBorder()).Headers(headers...)

	tickers := make([]string, 0, len(decisions))
	for ticker := range decisions {
		tickers = append(tickers, ticker)
	}

	sort.Strings(tickers)

	for _, ticker := range tickers {
		d := decisions[ticker]
		row := []string{ticker, string(d.Action), fmt.Sprintf("%g", d.Quantity), fmt.Sprintf("%d", d.Confidence)}

		if showReasoning {
			row = append(row, d.Reasoning)
		}

		t.Row(row...)
	}

	return t.Render()
}

// RenderMetrics prints a backtest summary.
func RenderMetrics(result backtest.Result) string {
	m := result.Metrics

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Rows(
			[]string{"Run", result.RunID},
			[]string{"Initial value", fmt.Sprintf("%.2f", m.InitialValue)},
			[]string{"Final value", fmt.Sprintf("%.2f", m.FinalValue)},
			[]string{"Total return", fmt.Sprintf("%.2f%%", m.TotalReturn*100)},
			[]string{"Sharpe ratio", fmt.Sprintf("%.3f", m.SharpeRatio)},
			[]string{"Max drawdown", fmt.Sprintf("%.2f%%", m.MaxDrawdown*100)},
			[]string{"Trades", fmt.Sprintf("%d", m.Trades)},
			[]string{"Steps", fmt.Sprintf("%d (%d skipped)", m.Steps, m.SkippedSteps)},
		)

	return TitleStyle.Render("Backtest results") + "\n" + t.Render()
}
