// Package marketdata fetches closed OHLCV bars for the signal pipeline.
package marketdata

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// ProviderType names a market data source in configuration.
type ProviderType string

const (
	ProviderBinance ProviderType = "binance"
	ProviderPolygon ProviderType = "polygon"
	ProviderMemory  ProviderType = "memory"
)

// Provider returns price history.
type Provider interface {
	// FetchSeries returns at most limit bars of ticker on interval, oldest
	// first, that closed at or before end. A bar that is still forming at
	// end is never returned. limit <= 0 asks for the provider's default.
	FetchSeries(ctx context.Context, ticker string, interval types.Interval, end time.Time, limit int) (types.PriceSeries, error)
}

// NewProvider creates a remote provider. apiKey is only used by Polygon.
func NewProvider(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceProvider(), nil
	case ProviderPolygon:
		return NewPolygonProvider(apiKey)
	case ProviderMemory:
		return NewMemoryProvider(), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

// closedBy reports whether a bar opening at open on interval has closed by end.
func closedBy(open time.Time, interval types.Interval, end time.Time) bool {
	return !open.Add(interval.Duration()).After(end)
}

// finish orders bars, drops unclosed ones and keeps the newest limit.
func finish(ticker string, interval types.Interval, bars []types.Bar, end time.Time, limit int) types.PriceSeries {
	closed := make([]types.Bar, 0, len(bars))

	for _, b := range bars {
		if closedBy(b.Time, interval, end) {
			closed = append(closed, b)
		}
	}

	return sortedSeries(ticker, interval, closed).Tail(limit)
}
