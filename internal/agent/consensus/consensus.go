// Package consensus is a deterministic Decider driven by the collector's
// record-level votes.
package consensus

import (
	"context"
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-signals/internal/agent"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/internal/utils"
)

// Config tunes the Decider.
type Config struct {
	// MinConfidence is the record confidence needed before acting.
	MinConfidence int
	// AllowShort enables opening shorts on bearish records.
	AllowShort bool
	// QuantityPrecision is the number of decimals quantities are floored to.
	QuantityPrecision int
}

// Decider reads the primary interval record of each ticker.
type Decider struct {
	config Config
}

var _ agent.Decider = (*Decider)(nil)

// New creates a consensus Decider.
func New(config Config) *Decider {
	return &Decider{config: config}
}

func (d *Decider) Decide(_ context.Context, input agent.DecisionInput) (map[string]types.Decision, error) {
	decisions := make(map[string]types.Decision, len(input.Tickers))

	for _, ticker := range input.Tickers {
		decisions[ticker] = d.decide(ticker, input)
	}

	return decisions, nil
}

func (d *Decider) decide(ticker string, input agent.DecisionInput) types.Decision {
	rec, ok := input.Analysis.Record(ticker, input.PrimaryInterval)
	if !ok {
		return hold("no analysis for primary interval")
	}

	risk := input.Risk[ticker]
	if risk.CurrentPrice <= 0 {
		return hold("no current price")
	}

	if rec.Confidence < d.config.MinConfidence {
		return hold(fmt.Sprintf("%s at %d below threshold %d", rec.Signal, rec.Confidence, d.config.MinConfidence))
	}

	pos := input.Portfolio.Positions[ticker]

	switch rec.Signal {
	case types.DirectionBullish:
		if pos.Short > 0 {
			return d.trade(types.ActionCover, pos.Short, rec, "closing short on bullish consensus")
		}

		qty := utils.RoundToDecimalPrecision(math.Max(0, risk.PositionLimit)/risk.CurrentPrice, d.config.QuantityPrecision)

		return d.trade(types.ActionBuy, qty, rec, "bullish consensus")
	case types.DirectionBearish:
		if pos.Long > 0 {
			return d.trade(types.ActionSell, pos.Long, rec, "closing long on bearish consensus")
		}

		if !d.config.AllowShort {
			return hold("bearish consensus, shorting disabled")
		}

		qty := utils.RoundToDecimalPrecision(math.Max(0, risk.PositionLimit)/risk.CurrentPrice, d.config.QuantityPrecision)

		return d.trade(types.ActionShort, qty, rec, "bearish consensus")
	default:
		return hold("neutral consensus")
	}
}

func (d *Decider) trade(action types.Action, qty float64, rec types.AnalysisRecord, reason string) types.Decision {
	if qty <= 0 {
		return hold(reason + ", no room under position limit")
	}

	return types.Decision{
		Action:     action,
		Quantity:   qty,
		Confidence: rec.Confidence,
		Reasoning:  fmt.Sprintf("%s (%d)", reason, rec.Confidence),
	}
}

func hold(reason string) types.Decision {
	d := types.HoldDecision()
	d.Reasoning = reason

	return d
}
