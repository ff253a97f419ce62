package types

import (
	"math"
	"time"
)

// Position holds independent long and short quantities for a ticker.
// The two are never netted against each other.
type Position struct {
	Long  float64 `json:"long" yaml:"long"`
	Short float64 `json:"short" yaml:"short"`
	// ShortMargin is the cash currently reserved against the short.
	ShortMargin float64 `json:"short_margin_used" yaml:"short_margin_used"`
}

// NetShares returns long minus short.
func (p Position) NetShares() float64 {
	return p.Long - p.Short
}

// PortfolioSnapshot is a read-only copy of ledger state handed to the agent.
type PortfolioSnapshot struct {
	Cash              float64             `json:"cash"`
	MarginRequirement float64             `json:"margin_requirement"`
	MarginUsed        float64             `json:"margin_used"`
	Positions         map[string]Position `json:"positions"`
}

// Exposure is the notional split of open positions at current prices.
type Exposure struct {
	Long           float64 `json:"long_exposure"`
	Short          float64 `json:"short_exposure"`
	Gross          float64 `json:"gross_exposure"`
	Net            float64 `json:"net_exposure"`
	LongShortRatio float64 `json:"long_short_ratio"`
}

// ValuationSnapshot is one point of the portfolio history.
type ValuationSnapshot struct {
	Time           time.Time `json:"time"`
	PortfolioValue float64   `json:"portfolio_value"`
	Exposure
}

// HasFiniteRatio reports whether the long/short ratio is a finite number.
func (v ValuationSnapshot) HasFiniteRatio() bool {
	return !math.IsInf(v.LongShortRatio, 0) && !math.IsNaN(v.LongShortRatio)
}

// TradeRecord is one executed (or fully clamped) trade as journaled.
type TradeRecord struct {
	ID           string    `json:"id"`
	RunID        string    `json:"run_id"`
	Ticker       string    `json:"ticker"`
	Action       Action    `json:"action"`
	RequestedQty float64   `json:"requested_qty"`
	ExecutedQty  float64   `json:"executed_qty"`
	Price        float64   `json:"price"`
	CashAfter    float64   `json:"cash_after"`
	ExecutedAt   time.Time `json:"executed_at"`
}
