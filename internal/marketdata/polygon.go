package marketdata

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// polygonDefaultLimit is used when no limit is requested.
const polygonDefaultLimit = 500

// PolygonAggsIterator is the iterator returned by ListAggs.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the part of the Polygon REST client we use.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonClientAdapter struct {
	client *polygon.Client
}

func (a *polygonClientAdapter) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return a.client.ListAggs(ctx, params, options...)
}

// PolygonProvider reads aggregate bars from Polygon.io.
type PolygonProvider struct {
	apiClient PolygonAPIClient
}

var _ Provider = (*PolygonProvider)(nil)

// NewPolygonProvider creates a provider authenticated with apiKey.
func NewPolygonProvider(apiKey string) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "polygon provider requires an API key")
	}

	return NewPolygonProviderWithAPI(&polygonClientAdapter{client: polygon.New(apiKey)}), nil
}

// NewPolygonProviderWithAPI creates a provider over a custom client.
func NewPolygonProviderWithAPI(apiClient PolygonAPIClient) *PolygonProvider {
	return &PolygonProvider{apiClient: apiClient}
}

// FetchSeries asks for a window wide enough to hold limit bars even with
// market closures and keeps the newest limit closed ones.
func (p *PolygonProvider) FetchSeries(ctx context.Context, ticker string, interval types.Interval, end time.Time, limit int) (types.PriceSeries, error) {
	multiplier, timespan, err := polygonTimespan(interval)
	if err != nil {
		return types.PriceSeries{}, err
	}

	if limit <= 0 {
		limit = polygonDefaultLimit
	}

	// equities trade roughly a third of the clock; pad the window generously
	from := end.Add(-time.Duration(limit) * interval.Duration() * 4).Add(-7 * 24 * time.Hour)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(from),
		To:         models.Millis(end),
	}.WithOrder(models.Asc).WithLimit(50000)

	iter := p.apiClient.ListAggs(ctx, params)
	bars := make([]types.Bar, 0, limit)

	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, types.Bar{
			Time:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if iter.Err() != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iter.Err(), "error iterating polygon aggregates for %s", ticker)
	}

	return finish(ticker, interval, bars, end, limit), nil
}

// polygonTimespan maps an interval to Polygon's multiplier and timespan.
func polygonTimespan(interval types.Interval) (int, models.Timespan, error) {
	d := interval.Duration()

	switch {
	case d <= 0:
		return 0, "", errors.Newf(errors.ErrCodeUnsupportedInterval, "unsupported interval for Polygon: %s", interval)
	case d%(7*24*time.Hour) == 0:
		return int(d / (7 * 24 * time.Hour)), models.Week, nil
	case d%(24*time.Hour) == 0:
		return int(d / (24 * time.Hour)), models.Day, nil
	case d%time.Hour == 0:
		return int(d / time.Hour), models.Hour, nil
	default:
		return int(d / time.Minute), models.Minute, nil
	}
}
