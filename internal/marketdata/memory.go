package marketdata

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// MemoryProvider serves history held in memory. Backtests preload it once and
// replay it step by step; FetchSeries only reveals bars closed by end.
type MemoryProvider struct {
	mu     sync.RWMutex
	series map[string]map[types.Interval]types.PriceSeries
}

var _ Provider = (*MemoryProvider)(nil)

// NewMemoryProvider creates an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		mu:     sync.RWMutex{},
		series: make(map[string]map[types.Interval]types.PriceSeries),
	}
}

// Add stores series, replacing anything held for the same ticker and interval.
func (m *MemoryProvider) Add(series types.PriceSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byInterval, ok := m.series[series.Ticker]
	if !ok {
		byInterval = make(map[types.Interval]types.PriceSeries)
		m.series[series.Ticker] = byInterval
	}

	byInterval[series.Interval] = series
}

// Series returns the full stored series.
func (m *MemoryProvider) Series(ticker string, interval types.Interval) (types.PriceSeries, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.series[ticker][interval]

	return s, ok
}

// Preload copies limit bars ending at end from src for every ticker and
// interval.
func (m *MemoryProvider) Preload(ctx context.Context, src Provider, tickers []string, intervals []types.Interval, end time.Time, limit int) error {
	for _, ticker := range tickers {
		for _, interval := range intervals {
			series, err := src.FetchSeries(ctx, ticker, interval, end, limit)
			if err != nil {
				return err
			}

			m.Add(series)
		}
	}

	return nil
}

func (m *MemoryProvider) FetchSeries(ctx context.Context, ticker string, interval types.Interval, end time.Time, limit int) (types.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "fetch cancelled", err)
	}

	if !interval.Valid() {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeUnsupportedInterval, "unsupported interval: %s", interval)
	}

	stored, ok := m.Series(ticker, interval)
	if !ok {
		return types.NewPriceSeries(ticker, interval, nil), nil
	}

	// bars are sorted by open time, so the closed prefix ends where the first
	// unclosed bar would be
	n := sort.Search(len(stored.Bars), func(i int) bool {
		return !closedBy(stored.Bars[i].Time, interval, end)
	})

	return types.NewPriceSeries(ticker, interval, stored.Bars[:n]).Tail(limit), nil
}

func sortedSeries(ticker string, interval types.Interval, bars []types.Bar) types.PriceSeries {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	return types.NewPriceSeries(ticker, interval, bars)
}
