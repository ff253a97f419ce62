package marketdata

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type fakePolygonAPIClient struct {
	aggs       []models.Agg
	err        error
	lastParams *models.ListAggsParams
}

func (f *fakePolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	f.lastParams = params

	return &fakePolygonIterator{aggs: f.aggs, err: f.err, index: -1}
}

type fakePolygonIterator struct {
	aggs  []models.Agg
	err   error
	index int
}

func (it *fakePolygonIterator) Next() bool {
	if it.err != nil {
		return false
	}

	it.index++

	return it.index < len(it.aggs)
}

func (it *fakePolygonIterator) Item() models.Agg {
	return it.aggs[it.index]
}

func (it *fakePolygonIterator) Err() error {
	return it.err
}

type PolygonProviderTestSuite struct {
	suite.Suite
	start time.Time
}

func TestPolygonProviderSuite(t *testing.T) {
	suite.Run(t, new(PolygonProviderTestSuite))
}

func (suite *PolygonProviderTestSuite) SetupTest() {
	suite.start = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
}

func (suite *PolygonProviderTestSuite) aggs(n int) []models.Agg {
	out := make([]models.Agg, n)
	for i := range out {
		//nolint:exhaustruct // third-party struct with many optional fields
		out[i] = models.Agg{
			Open:      float64(200 + i),
			High:      float64(201 + i),
			Low:       float64(199 + i),
			Close:     float64(200 + i),
			Volume:    1e6,
			Timestamp: models.Millis(suite.start.Add(time.Duration(i) * 24 * time.Hour)),
		}
	}

	return out
}

func (suite *PolygonProviderTestSuite) TestFetchDailyBars() {
	api := &fakePolygonAPIClient{aggs: suite.aggs(10)}
	provider := NewPolygonProviderWithAPI(api)

	// the bar opening on day 7 has not closed 12 hours into it
	end := suite.start.Add(7*24*time.Hour + 12*time.Hour)
	series, err := provider.FetchSeries(context.Background(), "AAPL", types.Interval1d, end, 3)
	suite.Require().NoError(err)
	suite.Require().Equal(3, series.Len())
	suite.Equal(206.0, series.Bars[2].Close)

	suite.Require().NotNil(api.lastParams)
	suite.Equal("AAPL", api.lastParams.Ticker)
	suite.Equal(1, api.lastParams.Multiplier)
	suite.Equal(models.Day, api.lastParams.Timespan)
}

func (suite *PolygonProviderTestSuite) TestFetchError() {
	provider := NewPolygonProviderWithAPI(&fakePolygonAPIClient{err: stderrors.New("unauthorized")})

	_, err := provider.FetchSeries(context.Background(), "AAPL", types.Interval1d, suite.start, 3)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
}

func (suite *PolygonProviderTestSuite) TestTimespanMapping() {
	tests := []struct {
		interval   types.Interval
		multiplier int
		timespan   models.Timespan
	}{
		{types.Interval1m, 1, models.Minute},
		{types.Interval15m, 15, models.Minute},
		{types.Interval4h, 4, models.Hour},
		{types.Interval1d, 1, models.Day},
		{types.Interval3d, 3, models.Day},
		{types.Interval1w, 1, models.Week},
	}

	for _, tc := range tests {
		multiplier, timespan, err := polygonTimespan(tc.interval)
		suite.Require().NoError(err)
		suite.Equal(tc.multiplier, multiplier, tc.interval)
		suite.Equal(tc.timespan, timespan, tc.interval)
	}

	_, _, err := polygonTimespan(types.Interval("2y"))
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedInterval))
}
