package backtest

import (
	"math"
	"os"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Metrics summarizes a run's equity curve.
type Metrics struct {
	// Initial cash.
	InitialValue float64 `yaml:"initial_value" json:"initial_value"`
	// Equity at the last completed step.
	FinalValue float64 `yaml:"final_value" json:"final_value"`
	// FinalValue / InitialValue - 1.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// Annualised from per-step returns, 0 when the curve is flat.
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	// Largest peak-to-trough decline as a fraction of the peak.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// Count of trades with a nonzero executed quantity.
	Trades       int `yaml:"trades" json:"trades"`
	Steps        int `yaml:"steps" json:"steps"`
	SkippedSteps int `yaml:"skipped_steps" json:"skipped_steps"`
}

// ComputeMetrics derives return, Sharpe and drawdown from an equity curve
// sampled once per primary interval.
func ComputeMetrics(initial float64, equity []float64, interval types.Interval) Metrics {
	m := Metrics{
		InitialValue: initial,
		FinalValue:   initial,
		TotalReturn:  0,
		SharpeRatio:  0,
		MaxDrawdown:  0,
		Trades:       0,
		Steps:        0,
		SkippedSteps: 0,
	}

	if len(equity) == 0 || initial <= 0 {
		return m
	}

	m.FinalValue = equity[len(equity)-1]
	m.TotalReturn = m.FinalValue/initial - 1
	m.MaxDrawdown = maxDrawdown(initial, equity)
	m.SharpeRatio = sharpe(initial, equity, interval)

	return m
}

func maxDrawdown(initial float64, equity []float64) float64 {
	peak := initial
	worst := 0.0

	for _, v := range equity {
		if v > peak {
			peak = v
		}

		if peak > 0 {
			worst = math.Max(worst, (peak-v)/peak)
		}
	}

	return worst
}

func sharpe(initial float64, equity []float64, interval types.Interval) float64 {
	returns := make([]float64, 0, len(equity))
	prev := initial

	for _, v := range equity {
		if prev > 0 {
			returns = append(returns, v/prev-1)
		}

		prev = v
	}

	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}

	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}

	std := math.Sqrt(variance / float64(len(returns)-1))
	if std < 1e-12 {
		return 0
	}

	periodsPerYear := float64(365*24*time.Hour) / float64(interval.Duration())

	return mean / std * math.Sqrt(periodsPerYear)
}

// WriteResult writes the run's metrics as YAML.
func WriteResult(path string, result Result) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnknown, "failed to marshal backtest result", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeUnknown, "failed to write backtest result", err)
	}

	return nil
}
