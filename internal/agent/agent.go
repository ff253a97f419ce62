// Package agent defines the contract between the scheduling loop and whatever
// turns technical analysis into per-ticker decisions.
package agent

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Request is the input of one decision cycle.
type Request struct {
	Tickers   []string
	Intervals []types.Interval
	Portfolio types.PortfolioSnapshot
	AsOf      time.Time
}

// Result is what the agent hands back to the loop.
type Result struct {
	Decisions map[string]types.Decision
	// AnalystSignals maps analyst name -> ticker -> risk data. The loop reads
	// current prices from types.RiskManagementAgent.
	AnalystSignals map[string]map[string]types.AnalystSignal
	Analysis       types.TechnicalAnalysis
}

// Decision returns the decision for ticker, or hold when the agent was silent.
func (r Result) Decision(ticker string) types.Decision {
	if d, ok := r.Decisions[ticker]; ok {
		return d
	}

	return types.HoldDecision()
}

// CurrentPrice returns the risk manager's price for ticker, or 0.
func (r Result) CurrentPrice(ticker string) float64 {
	risk, ok := r.AnalystSignals[types.RiskManagementAgent]
	if !ok {
		return 0
	}

	return risk[ticker].CurrentPrice
}

// Agent produces decisions for a cycle.
type Agent interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// DecisionInput is everything a Decider sees.
type DecisionInput struct {
	Tickers         []string
	PrimaryInterval types.Interval
	Portfolio       types.PortfolioSnapshot
	Analysis        types.TechnicalAnalysis
	// Risk is the per-ticker risk data of types.RiskManagementAgent.
	Risk map[string]types.AnalystSignal
	AsOf time.Time
}

// Decider turns analysis and risk data into decisions. It plays the part of
// the portfolio manager.
type Decider interface {
	Decide(ctx context.Context, input DecisionInput) (map[string]types.Decision, error)
}
