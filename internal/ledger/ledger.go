// Package ledger is the portfolio ledger: cash, independent long and short
// positions per ticker, and the append-only valuation history.
//
// Trade execution never fails. Requests are clamped to what cash, margin or
// the held position allows, possibly to zero, and the executed quantity is
// returned to the caller.
package ledger

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultQuantityPrecision trades whole shares.
const DefaultQuantityPrecision = 0

type position struct {
	long  decimal.Decimal
	short decimal.Decimal
	// shortMargin is the cash reserved against the open short.
	shortMargin decimal.Decimal
	// shortBasis is the notional at which the open short was sold. It is
	// settled into cash when the short is covered.
	shortBasis decimal.Decimal
}

func newPosition() *position {
	return &position{
		long:        decimal.Zero,
		short:       decimal.Zero,
		shortMargin: decimal.Zero,
		shortBasis:  decimal.Zero,
	}
}

// Ledger owns the portfolio. All methods are safe for concurrent use; every
// mutation happens under one lock.
type Ledger struct {
	mu                sync.Mutex
	cash              decimal.Decimal
	marginRequirement decimal.Decimal
	precision         int32
	positions         map[string]*position
	history           []types.ValuationSnapshot
}

// New creates a ledger holding initialCash. marginRequirement must be in
// (0, 1]. Quantities are floored to quantityPrecision decimals.
func New(initialCash, marginRequirement float64, quantityPrecision int) (*Ledger, error) {
	if math.IsNaN(initialCash) || math.IsInf(initialCash, 0) || initialCash < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidCash, "initial cash must be a non-negative number, got %v", initialCash)
	}

	if math.IsNaN(marginRequirement) || marginRequirement <= 0 || marginRequirement > 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidMargin, "margin requirement must be in (0, 1], got %v", marginRequirement)
	}

	if quantityPrecision < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "quantity precision must be >= 0, got %d", quantityPrecision)
	}

	return &Ledger{
		mu:                sync.Mutex{},
		cash:              decimal.NewFromFloat(initialCash),
		marginRequirement: decimal.NewFromFloat(marginRequirement),
		precision:         int32(quantityPrecision),
		positions:         make(map[string]*position),
		history:           nil,
	}, nil
}

// ExecuteTrade applies action to ticker at price and returns the executed
// quantity. Hold, unknown actions, non-positive quantities and non-positive
// prices execute nothing.
func (l *Ledger) ExecuteTrade(ticker string, action types.Action, quantity, price float64) float64 {
	if !action.IsTrade() || !(quantity > 0) || !(price > 0) || math.IsInf(quantity, 0) || math.IsInf(price, 0) {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	qty := decimal.NewFromFloat(quantity).Truncate(l.precision)
	px := decimal.NewFromFloat(price)

	if !qty.IsPositive() {
		return 0
	}

	pos, ok := l.positions[ticker]
	if !ok {
		pos = newPosition()
	}

	var executed decimal.Decimal

	switch action {
	case types.ActionBuy:
		executed = l.buy(pos, qty, px)
	case types.ActionSell:
		executed = l.sell(pos, qty, px)
	case types.ActionShort:
		executed = l.openShort(pos, qty, px)
	case types.ActionCover:
		executed = l.cover(pos, qty, px)
	}

	if executed.IsPositive() {
		l.positions[ticker] = pos
	}

	return executed.InexactFloat64()
}

func (l *Ledger) buy(pos *position, qty, price decimal.Decimal) decimal.Decimal {
	affordable := l.cash.Div(price).Truncate(l.precision)
	executed := decimal.Min(qty, affordable)

	if !executed.IsPositive() {
		return decimal.Zero
	}

	l.cash = l.cash.Sub(executed.Mul(price))
	pos.long = pos.long.Add(executed)

	return executed
}

func (l *Ledger) sell(pos *position, qty, price decimal.Decimal) decimal.Decimal {
	executed := decimal.Min(qty, pos.long)

	if !executed.IsPositive() {
		return decimal.Zero
	}

	l.cash = l.cash.Add(executed.Mul(price))
	pos.long = pos.long.Sub(executed)

	return executed
}

func (l *Ledger) openShort(pos *position, qty, price decimal.Decimal) decimal.Decimal {
	perShare := price.Mul(l.marginRequirement)
	affordable := l.cash.Div(perShare).Truncate(l.precision)
	executed := decimal.Min(qty, affordable)

	if !executed.IsPositive() {
		return decimal.Zero
	}

	margin := executed.Mul(perShare)

	l.cash = l.cash.Sub(margin)
	pos.short = pos.short.Add(executed)
	pos.shortMargin = pos.shortMargin.Add(margin)
	pos.shortBasis = pos.shortBasis.Add(executed.Mul(price))

	return executed
}

// cover buys back shares, pays the closing cost, and releases the matching
// share of reserved margin and short proceeds.
func (l *Ledger) cover(pos *position, qty, price decimal.Decimal) decimal.Decimal {
	executed := decimal.Min(qty, pos.short)

	if !executed.IsPositive() {
		return decimal.Zero
	}

	released, basis := pos.shortMargin, pos.shortBasis

	if executed.LessThan(pos.short) {
		fraction := executed.Div(pos.short)
		released = pos.shortMargin.Mul(fraction)
		basis = pos.shortBasis.Mul(fraction)
	}

	l.cash = l.cash.Add(released).Add(basis).Sub(executed.Mul(price))
	pos.short = pos.short.Sub(executed)
	pos.shortMargin = pos.shortMargin.Sub(released)
	pos.shortBasis = pos.shortBasis.Sub(basis)

	if pos.short.IsZero() {
		pos.shortMargin = decimal.Zero
		pos.shortBasis = decimal.Zero
	}

	return executed
}

// Cash returns available cash.
func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.cash.InexactFloat64()
}

// MarginRequirement returns the fraction of short notional held as margin.
func (l *Ledger) MarginRequirement() float64 {
	return l.marginRequirement.InexactFloat64()
}

// Position returns the position held in ticker, zero when none.
func (l *Ledger) Position(ticker string) types.Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[ticker]
	if !ok {
		return types.Position{}
	}

	return toPosition(pos)
}

// Snapshot returns a copy of the ledger state.
func (l *Ledger) Snapshot() types.PortfolioSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	positions := make(map[string]types.Position, len(l.positions))
	marginUsed := decimal.Zero

	for ticker, pos := range l.positions {
		positions[ticker] = toPosition(pos)
		marginUsed = marginUsed.Add(pos.shortMargin)
	}

	return types.PortfolioSnapshot{
		Cash:              l.cash.InexactFloat64(),
		MarginRequirement: l.marginRequirement.InexactFloat64(),
		MarginUsed:        marginUsed.InexactFloat64(),
		Positions:         positions,
	}
}

// Tickers returns the tickers with a recorded position, sorted.
func (l *Ledger) Tickers() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	tickers := make([]string, 0, len(l.positions))
	for ticker := range l.positions {
		tickers = append(tickers, ticker)
	}

	sort.Strings(tickers)

	return tickers
}

// PortfolioValue is cash plus long value minus short value. Tickers missing
// from prices contribute nothing.
func (l *Ledger) PortfolioValue(prices map[string]float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.portfolioValue(prices).InexactFloat64()
}

func (l *Ledger) portfolioValue(prices map[string]float64) decimal.Decimal {
	value := l.cash

	for ticker, pos := range l.positions {
		price, ok := prices[ticker]
		if !ok || math.IsNaN(price) {
			continue
		}

		px := decimal.NewFromFloat(price)
		value = value.Add(pos.long.Mul(px)).Sub(pos.short.Mul(px))
	}

	return value
}

// Equity is PortfolioValue plus the margin and short proceeds still held
// against open shorts: what the account is worth if every position were
// closed at prices.
func (l *Ledger) Equity(prices map[string]float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	equity := l.portfolioValue(prices)

	for ticker, pos := range l.positions {
		if _, ok := prices[ticker]; !ok {
			continue
		}

		equity = equity.Add(pos.shortMargin).Add(pos.shortBasis)
	}

	return equity.InexactFloat64()
}

// Exposure computes the exposure of the current positions at prices.
func (l *Ledger) Exposure(prices map[string]float64) types.Exposure {
	return ComputeExposure(l.Snapshot().Positions, prices)
}

// RecordValuation appends a valuation snapshot at t and returns it.
func (l *Ledger) RecordValuation(t time.Time, prices map[string]float64) types.ValuationSnapshot {
	snapshot := types.ValuationSnapshot{
		Time:           t,
		PortfolioValue: l.PortfolioValue(prices),
		Exposure:       l.Exposure(prices),
	}

	l.mu.Lock()
	l.history = append(l.history, snapshot)
	l.mu.Unlock()

	return snapshot
}

// History returns a copy of the valuation history in append order.
func (l *Ledger) History() []types.ValuationSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]types.ValuationSnapshot, len(l.history))
	copy(out, l.history)

	return out
}

func toPosition(pos *position) types.Position {
	return types.Position{
		Long:        pos.long.InexactFloat64(),
		Short:       pos.short.InexactFloat64(),
		ShortMargin: pos.shortMargin.InexactFloat64(),
	}
}
