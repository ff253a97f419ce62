package marketdata

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// binancePageSize is the most klines Binance returns per request.
const binancePageSize = 1000

// BinanceKlinesService is the part of the Binance klines service we use.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient creates klines services.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceClientAdapter struct {
	client *binance.Client
}

func (a *binanceClientAdapter) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesAdapter{svc: a.client.NewKlinesService()}
}

type binanceKlinesAdapter struct {
	svc *binance.KlinesService
}

func (a *binanceKlinesAdapter) Symbol(symbol string) BinanceKlinesService {
	a.svc = a.svc.Symbol(symbol)

	return a
}

func (a *binanceKlinesAdapter) Interval(interval string) BinanceKlinesService {
	a.svc = a.svc.Interval(interval)

	return a
}

func (a *binanceKlinesAdapter) EndTime(endTime int64) BinanceKlinesService {
	a.svc = a.svc.EndTime(endTime)

	return a
}

func (a *binanceKlinesAdapter) Limit(limit int) BinanceKlinesService {
	a.svc = a.svc.Limit(limit)

	return a
}

func (a *binanceKlinesAdapter) Do(ctx context.Context) ([]*binance.Kline, error) {
	return a.svc.Do(ctx)
}

// BinanceProvider reads public spot klines. No API key is needed.
type BinanceProvider struct {
	apiClient BinanceAPIClient
}

var _ Provider = (*BinanceProvider)(nil)

// NewBinanceProvider creates a provider backed by the public Binance API.
func NewBinanceProvider() *BinanceProvider {
	return NewBinanceProviderWithAPI(&binanceClientAdapter{client: binance.NewClient("", "")})
}

// NewBinanceProviderWithAPI creates a provider over a custom client.
func NewBinanceProviderWithAPI(apiClient BinanceAPIClient) *BinanceProvider {
	return &BinanceProvider{apiClient: apiClient}
}

// FetchSeries pages backwards from end until limit closed klines are
// collected or Binance runs out of history.
func (p *BinanceProvider) FetchSeries(ctx context.Context, ticker string, interval types.Interval, end time.Time, limit int) (types.PriceSeries, error) {
	if !interval.Valid() {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeUnsupportedInterval, "unsupported interval for Binance: %s", interval)
	}

	if limit <= 0 {
		limit = binancePageSize
	}

	// klines are keyed by open time; the last one at or before this cut-off
	// closes by end
	cutoff := end.Add(-interval.Duration()).UnixMilli()
	bars := make([]types.Bar, 0, limit)

	for len(bars) < limit {
		page := min(binancePageSize, limit-len(bars))

		klines, err := p.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval(interval.String()).
			EndTime(cutoff).
			Limit(page).
			Do(ctx)
		if err != nil {
			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s %s klines from Binance", ticker, interval)
		}

		if len(klines) == 0 {
			break
		}

		parsed, err := parseKlines(klines)
		if err != nil {
			return types.PriceSeries{}, err
		}

		bars = append(parsed, bars...)
		cutoff = klines[0].OpenTime - 1

		if len(klines) < page {
			break
		}
	}

	return finish(ticker, interval, bars, end, limit), nil
}

// parseKlines converts Binance's string encoded klines to bars.
func parseKlines(klines []*binance.Kline) ([]types.Bar, error) {
	bars := make([]types.Bar, 0, len(klines))

	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q at %d", raw, k.OpenTime)
			}

			values[i] = v
		}

		bars = append(bars, types.Bar{
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return bars, nil
}
