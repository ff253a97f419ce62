package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type MemoryProviderTestSuite struct {
	suite.Suite
	provider *MemoryProvider
	start    time.Time
}

func TestMemoryProviderSuite(t *testing.T) {
	suite.Run(t, new(MemoryProviderTestSuite))
}

func (suite *MemoryProviderTestSuite) SetupTest() {
	suite.provider = NewMemoryProvider()
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	bars := make([]types.Bar, 10)
	for i := range bars {
		bars[i] = types.Bar{
			Time:   suite.start.Add(time.Duration(i) * time.Hour),
			Open:   float64(100 + i),
			High:   float64(101 + i),
			Low:    float64(99 + i),
			Close:  float64(100 + i),
			Volume: 10,
		}
	}

	suite.provider.Add(types.NewPriceSeries("AAPL", types.Interval1h, bars))
}

func (suite *MemoryProviderTestSuite) TestOnlyClosedBarsAreRevealed() {
	// the 03:00 bar closes at 04:00, the 04:00 bar is still forming at 04:30
	end := suite.start.Add(4*time.Hour + 30*time.Minute)

	series, err := suite.provider.FetchSeries(context.Background(), "AAPL", types.Interval1h, end, 0)
	suite.Require().NoError(err)
	suite.Equal(4, series.Len())

	last, ok := series.Last()
	suite.True(ok)
	suite.Equal(suite.start.Add(3*time.Hour), last.Time)
}

func (suite *MemoryProviderTestSuite) TestLimitKeepsNewest() {
	series, err := suite.provider.FetchSeries(context.Background(), "AAPL", types.Interval1h, suite.start.Add(24*time.Hour), 3)
	suite.Require().NoError(err)
	suite.Require().Equal(3, series.Len())
	suite.Equal(107.0, series.Bars[0].Close)
	suite.Equal(109.0, series.Bars[2].Close)
}

func (suite *MemoryProviderTestSuite) TestUnknownTickerIsEmpty() {
	series, err := suite.provider.FetchSeries(context.Background(), "MSFT", types.Interval1h, suite.start, 10)
	suite.Require().NoError(err)
	suite.True(series.Empty())
	suite.Equal("MSFT", series.Ticker)
}

func (suite *MemoryProviderTestSuite) TestInvalidInterval() {
	_, err := suite.provider.FetchSeries(context.Background(), "AAPL", types.Interval("7m"), suite.start, 10)
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedInterval))
}

func (suite *MemoryProviderTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.provider.FetchSeries(ctx, "AAPL", types.Interval1h, suite.start, 10)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
}

func (suite *MemoryProviderTestSuite) TestPreload() {
	dst := NewMemoryProvider()
	err := dst.Preload(context.Background(), suite.provider, []string{"AAPL"}, []types.Interval{types.Interval1h}, suite.start.Add(5*time.Hour), 100)
	suite.Require().NoError(err)

	series, ok := dst.Series("AAPL", types.Interval1h)
	suite.True(ok)
	suite.Equal(5, series.Len())
}

func (suite *MemoryProviderTestSuite) TestNewProvider() {
	p, err := NewProvider(ProviderBinance, "")
	suite.Require().NoError(err)
	suite.IsType(&BinanceProvider{}, p)

	_, err = NewProvider(ProviderPolygon, "")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))

	p, err = NewProvider(ProviderPolygon, "key")
	suite.Require().NoError(err)
	suite.IsType(&PolygonProvider{}, p)

	_, err = NewProvider(ProviderType("bloomberg"), "")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}
