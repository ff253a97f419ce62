// Package notifier sends trade and portfolio summary alerts with per-key
// cooldowns. Delivery failures are logged and dropped, never returned.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"go.uber.org/zap"
)

// TradeNotice describes an executed trade.
type TradeNotice struct {
	Time          time.Time
	Ticker        string
	Action        types.Action
	Quantity      float64
	Price         float64
	NetShares     float64
	PositionValue float64
	CashAfter     float64
}

// SummaryNotice describes the portfolio after a cycle.
type SummaryNotice struct {
	Time       time.Time
	TotalValue float64
	Cash       float64
	Exposure   types.Exposure
}

// Notifier delivers alerts. Both Notify methods report whether a message was
// actually sent; a suppressed or failed send returns false.
type Notifier interface {
	Enabled() bool
	// NotifyTrade is suppressed when a trade for the same ticker was sent
	// less than minInterval before notice.Time.
	NotifyTrade(ctx context.Context, notice TradeNotice, minInterval time.Duration) bool
	// NotifySummary is suppressed when a summary was sent less than
	// minInterval ago by the wall clock.
	NotifySummary(ctx context.Context, notice SummaryNotice, minInterval time.Duration) bool
}

// Sender delivers one formatted message.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// MessageNotifier formats notices, applies cooldowns and hands messages to a
// Sender. The dedup state only moves on a successful send.
type MessageNotifier struct {
	sender Sender
	log    *logger.Logger
	now    func() time.Time

	mu            sync.Mutex
	lastTradeSent map[string]time.Time
	lastSummary   time.Time
	summarySent   bool
}

var _ Notifier = (*MessageNotifier)(nil)

// NewMessageNotifier creates a notifier over sender. A nil sender gives a
// disabled notifier. now defaults to time.Now.
func NewMessageNotifier(sender Sender, log *logger.Logger, now func() time.Time) *MessageNotifier {
	if log == nil {
		log = logger.NewNop()
	}

	if now == nil {
		now = time.Now
	}

	return &MessageNotifier{
		sender:        sender,
		log:           log,
		now:           now,
		mu:            sync.Mutex{},
		lastTradeSent: make(map[string]time.Time),
		lastSummary:   time.Time{},
		summarySent:   false,
	}
}

// Disabled returns a notifier that never sends.
func Disabled() *MessageNotifier {
	return NewMessageNotifier(nil, nil, nil)
}

func (n *MessageNotifier) Enabled() bool {
	return n.sender != nil
}

func (n *MessageNotifier) NotifyTrade(ctx context.Context, notice TradeNotice, minInterval time.Duration) bool {
	if !n.Enabled() {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if minInterval > 0 {
		if last, ok := n.lastTradeSent[notice.Ticker]; ok && notice.Time.Sub(last) < minInterval {
			n.log.Debug("Trade notification suppressed by cooldown",
				zap.String("ticker", notice.Ticker),
				zap.Time("last_sent", last),
			)

			return false
		}
	}

	if err := n.sender.Send(ctx, FormatTrade(notice)); err != nil {
		n.log.Warn("Failed to send trade notification",
			zap.String("ticker", notice.Ticker),
			zap.Error(err),
		)

		return false
	}

	n.lastTradeSent[notice.Ticker] = notice.Time

	return true
}

func (n *MessageNotifier) NotifySummary(ctx context.Context, notice SummaryNotice, minInterval time.Duration) bool {
	if !n.Enabled() {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()

	if minInterval > 0 && n.summarySent && now.Sub(n.lastSummary) < minInterval {
		return false
	}

	if err := n.sender.Send(ctx, FormatSummary(notice)); err != nil {
		n.log.Warn("Failed to send summary notification", zap.Error(err))

		return false
	}

	if minInterval > 0 {
		n.lastSummary = now
		n.summarySent = true
	}

	return true
}
