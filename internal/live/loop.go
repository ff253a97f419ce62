package live

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-signals/internal/agent"
	"github.com/rxtech-lab/argo-signals/internal/journal"
	"github.com/rxtech-lab/argo-signals/internal/ledger"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/notifier"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

// MinSleep is the shortest suspension between two bar-aligned cycles.
const MinSleep = time.Second

// Lifecycle callback types for the scheduling loop.
// Callbacks with an error return stop the loop when they return an error.

// OnCycleCompleteCallback is called after every cycle that reached the ledger.
type OnCycleCompleteCallback func(report CycleReport) error

// OnErrorCallback is called when a cycle is skipped.
type OnErrorCallback func(err error)

// OnLoopStopCallback is called when Run returns (always called via defer).
type OnLoopStopCallback func(err error)

// Callbacks holds the loop's lifecycle callbacks.
// All fields are pointers - nil means no callback will be invoked.
type Callbacks struct {
	OnCycleComplete *OnCycleCompleteCallback
	OnError         *OnErrorCallback
	OnLoopStop      *OnLoopStopCallback
}

// Config is the loop's slice of the settings file.
type Config struct {
	RunID           string
	Tickers         []string
	Intervals       []types.Interval
	PrimaryInterval types.Interval
	// PollInterval > 0 sleeps a fixed duration; 0 aligns to the next primary close.
	PollInterval  time.Duration
	NotifyEnabled bool
	TradeCooldown time.Duration
	// SummaryInterval > 0 sends a portfolio summary every cycle with that cooldown.
	SummaryInterval time.Duration
}

// CycleReport describes what one cycle did.
type CycleReport struct {
	Time      time.Time
	Decisions map[string]types.Decision
	Trades    []types.TradeRecord
	Prices    map[string]float64
	Snapshot  types.ValuationSnapshot
}

// Loop runs decision cycles against a ledger until its context is cancelled.
type Loop struct {
	config   Config
	agent    agent.Agent
	ledger   *ledger.Ledger
	notifier notifier.Notifier
	journal  journal.Recorder
	log      *logger.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	// mu keeps cycles from interleaving.
	mu sync.Mutex
}

// Option customizes a Loop.
type Option func(*Loop)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// WithSleeper replaces the context-aware sleep between cycles.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Loop) { l.sleep = sleep }
}

// NewLoop wires a loop. notifier and journal may be nil.
func NewLoop(config Config, decisionAgent agent.Agent, book *ledger.Ledger, notify notifier.Notifier,
	recorder journal.Recorder, log *logger.Logger, opts ...Option,
) (*Loop, error) {
	if decisionAgent == nil || book == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "loop requires an agent and a ledger")
	}

	if len(config.Tickers) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "loop requires at least one ticker")
	}

	if !config.PrimaryInterval.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidInterval, "invalid primary interval %q", config.PrimaryInterval)
	}

	if notify == nil {
		notify = notifier.Disabled()
	}

	if log == nil {
		log = logger.NewNop()
	}

	l := &Loop{
		config:   config,
		agent:    decisionAgent,
		ledger:   book,
		notifier: notify,
		journal:  recorder,
		log:      log,
		now:      time.Now,
		sleep:    sleepContext,
		mu:       sync.Mutex{},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// NextSleep returns how long to wait after a cycle that finished at now.
func NextSleep(now time.Time, poll time.Duration, primary types.Interval) time.Duration {
	if poll > 0 {
		return poll
	}

	wait := primary.NextClose(now).Sub(now)
	if wait < MinSleep {
		return MinSleep
	}

	return wait
}

// Run executes cycles until ctx is cancelled or a callback aborts.
// A failed cycle is reported and skipped; it never stops the loop.
func (l *Loop) Run(ctx context.Context, callbacks Callbacks) (err error) {
	defer func() {
		if callbacks.OnLoopStop != nil {
			(*callbacks.OnLoopStop)(err)
		}
	}()

	l.log.Info("Scheduling loop started",
		zap.Strings("tickers", l.config.Tickers),
		zap.String("primary_interval", l.config.PrimaryInterval.String()),
		zap.Duration("poll", l.config.PollInterval),
	)

	for {
		if ctx.Err() != nil {
			l.log.Info("Scheduling loop stopped")

			return nil
		}

		report, cycleErr := l.RunCycle(ctx, l.now())
		if cycleErr != nil {
			l.log.Warn("Cycle skipped", zap.Error(cycleErr))

			if callbacks.OnError != nil {
				(*callbacks.OnError)(cycleErr)
			}
		} else if callbacks.OnCycleComplete != nil {
			if err := (*callbacks.OnCycleComplete)(report); err != nil {
				return err
			}
		}

		wait := NextSleep(l.now(), l.config.PollInterval, l.config.PrimaryInterval)
		l.log.Debug("Sleeping until next cycle", zap.Duration("wait", wait))

		if err := l.sleep(ctx, wait); err != nil {
			l.log.Info("Scheduling loop stopped")

			return nil
		}
	}
}

// RunCycle asks the agent for decisions as of asOf, applies them to the
// ledger, notifies and records a valuation snapshot. An agent failure
// returns an error before anything is mutated.
func (l *Loop) RunCycle(ctx context.Context, asOf time.Time) (CycleReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	result, err := l.agent.Run(ctx, agent.Request{
		Tickers:   l.config.Tickers,
		Intervals: l.config.Intervals,
		Portfolio: l.ledger.Snapshot(),
		AsOf:      asOf,
	})
	if err != nil {
		return CycleReport{}, errors.Wrap(errors.ErrCodeAgentFailed, "decision agent failed", err)
	}

	report := CycleReport{
		Time:      asOf,
		Decisions: make(map[string]types.Decision, len(l.config.Tickers)),
		Trades:    []types.TradeRecord{},
		Prices:    make(map[string]float64, len(l.config.Tickers)),
		Snapshot:  types.ValuationSnapshot{},
	}

	for _, ticker := range l.config.Tickers {
		decision := result.Decision(ticker)
		price := result.CurrentPrice(ticker)
		report.Decisions[ticker] = decision

		if price > 0 {
			report.Prices[ticker] = price
		}

		executed := l.ledger.ExecuteTrade(ticker, decision.Action, decision.Quantity, price)
		if !decision.Action.IsTrade() {
			continue
		}

		trade := types.TradeRecord{
			ID:           uuid.New().String(),
			RunID:        l.config.RunID,
			Ticker:       ticker,
			Action:       decision.Action,
			RequestedQty: decision.Quantity,
			ExecutedQty:  executed,
			Price:        price,
			CashAfter:    l.ledger.Cash(),
			ExecutedAt:   asOf,
		}
		report.Trades = append(report.Trades, trade)
		l.recordTrade(ctx, trade)

		if executed > 0 {
			l.log.Info("Trade executed",
				zap.String("ticker", ticker),
				zap.String("action", string(decision.Action)),
				zap.Float64("quantity", executed),
				zap.Float64("price", price),
			)
			l.notifyTrade(ctx, trade)
		}
	}

	report.Snapshot = l.ledger.RecordValuation(asOf, report.Prices)
	l.recordSnapshot(ctx, report.Snapshot)
	l.notifySummary(ctx, report.Snapshot)

	return report, nil
}

func (l *Loop) notifyTrade(ctx context.Context, trade types.TradeRecord) {
	if !l.config.NotifyEnabled || !l.notifier.Enabled() {
		return
	}

	net := l.ledger.Position(trade.Ticker).NetShares()

	l.notifier.NotifyTrade(ctx, notifier.TradeNotice{
		Time:          trade.ExecutedAt,
		Ticker:        trade.Ticker,
		Action:        trade.Action,
		Quantity:      trade.ExecutedQty,
		Price:         trade.Price,
		NetShares:     net,
		PositionValue: net * trade.Price,
		CashAfter:     trade.CashAfter,
	}, l.config.TradeCooldown)
}

func (l *Loop) notifySummary(ctx context.Context, snapshot types.ValuationSnapshot) {
	if l.config.SummaryInterval <= 0 || !l.config.NotifyEnabled || !l.notifier.Enabled() {
		return
	}

	l.notifier.NotifySummary(ctx, notifier.SummaryNotice{
		Time:       snapshot.Time,
		TotalValue: snapshot.PortfolioValue,
		Cash:       l.ledger.Cash(),
		Exposure:   snapshot.Exposure,
	}, l.config.SummaryInterval)
}

func (l *Loop) recordTrade(ctx context.Context, trade types.TradeRecord) {
	if l.journal == nil {
		return
	}

	if err := l.journal.RecordTrade(ctx, trade); err != nil {
		l.log.Warn("Failed to journal trade", zap.String("ticker", trade.Ticker), zap.Error(err))
	}
}

func (l *Loop) recordSnapshot(ctx context.Context, snapshot types.ValuationSnapshot) {
	if l.journal == nil {
		return
	}

	if err := l.journal.RecordSnapshot(ctx, l.config.RunID, snapshot); err != nil {
		l.log.Warn("Failed to journal snapshot", zap.Error(err))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
