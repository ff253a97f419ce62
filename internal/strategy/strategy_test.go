package strategy

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/stretchr/testify/suite"
)

type StrategyTestSuite struct {
	suite.Suite
	start time.Time
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

// trend builds n bars whose close moves by step each bar, with a one point
// high/low range around the close.
func (suite *StrategyTestSuite) trend(n int, first, step float64, volume float64) types.PriceSeries {
	bars := make([]types.Bar, n)
	for i := range bars {
		c := first + step*float64(i)
		bars[i] = types.Bar{
			Time:   suite.start.Add(time.Duration(i) * time.Hour),
			Open:   c - step/2,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: volume,
		}
	}

	return types.NewPriceSeries("BTCUSDT", types.Interval1h, bars)
}

// ============================================================================
// Donchian
// ============================================================================

func (suite *StrategyTestSuite) TestChannelSignal() {
	sig := ChannelSignal(115, 110, 90, 100)
	suite.Equal(types.DirectionBullish, sig.Signal)
	suite.Equal(80, sig.Confidence)
	suite.Equal(110.0, sig.Metrics["upper"])
	suite.Equal(90.0, sig.Metrics["lower"])
	suite.Equal(100.0, sig.Metrics["mid"])

	sig = ChannelSignal(85, 110, 90, 100)
	suite.Equal(types.DirectionBearish, sig.Signal)
	suite.Equal(80, sig.Confidence)

	sig = ChannelSignal(100, 110, 90, 100)
	suite.Equal(types.DirectionNeutral, sig.Signal)
	suite.Equal(50, sig.Confidence)
}

func (suite *StrategyTestSuite) TestDonchianBreakoutAbovePriorChannel() {
	bars := make([]types.Bar, 0, 26)
	for i := 0; i < 25; i++ {
		bars = append(bars, types.Bar{
			Time:   suite.start.Add(time.Duration(i) * time.Hour),
			Open:   100,
			High:   110,
			Low:    90,
			Close:  100,
			Volume: 1000,
		})
	}

	bars = append(bars, types.Bar{
		Time:   suite.start.Add(25 * time.Hour),
		Open:   105,
		High:   116,
		Low:    104,
		Close:  115,
		Volume: 1000,
	})

	sig := NewDonchian().Evaluate(types.NewPriceSeries("AAPL", types.Interval1h, bars), types.Interval1h)
	suite.Equal(types.DirectionBullish, sig.Signal)
	suite.Equal(80, sig.Confidence)
	suite.Equal(110.0, sig.Metrics["upper"])
	suite.Equal(90.0, sig.Metrics["lower"])
}

// ============================================================================
// Short history
// ============================================================================

func (suite *StrategyTestSuite) TestShortHistoryIsNeutral() {
	series := suite.trend(5, 100, 1, 1000)

	for _, name := range DefaultRegistry().List() {
		s, err := DefaultRegistry().Get(name)
		suite.Require().NoError(err)

		sig := s.Evaluate(series, types.Interval1h)
		suite.Equal(types.DirectionNeutral, sig.Signal, name)
		suite.Equal(types.NeutralConfidence, sig.Confidence, name)
	}
}

func (suite *StrategyTestSuite) TestBelowMinBarsIsNeutral() {
	for _, name := range DefaultRegistry().List() {
		s, err := DefaultRegistry().Get(name)
		suite.Require().NoError(err)

		sig := s.Evaluate(suite.trend(s.MinBars()-1, 100, 1, 1000), types.Interval1h)
		suite.Equal(types.DirectionNeutral, sig.Signal, name)
		suite.Equal(types.NeutralConfidence, sig.Confidence, name)
	}
}

func (suite *StrategyTestSuite) TestConfidenceStaysInRange() {
	up := suite.trend(260, 100, 1, 1000)
	down := suite.trend(260, 400, -1, 1000)

	for _, name := range DefaultRegistry().List() {
		s, err := DefaultRegistry().Get(name)
		suite.Require().NoError(err)

		for _, series := range []types.PriceSeries{up, down} {
			sig := s.Evaluate(series, types.Interval1h)
			suite.GreaterOrEqual(sig.Confidence, 0, name)
			suite.LessOrEqual(sig.Confidence, 100, name)
			suite.Contains([]types.Direction{types.DirectionBullish, types.DirectionBearish, types.DirectionNeutral}, sig.Signal, name)
		}
	}
}

// ============================================================================
// Volume
// ============================================================================

func (suite *StrategyTestSuite) TestVolumeSpikeAboveEMA() {
	series := suite.trend(30, 100, 0, 1000)
	series = series.Append(types.Bar{
		Time:   suite.start.Add(30 * time.Hour),
		Open:   100,
		High:   106,
		Low:    100,
		Close:  105,
		Volume: 5000,
	})

	sig := NewVolume().Evaluate(series, types.Interval1h)
	suite.Equal(types.DirectionBullish, sig.Signal)
	suite.Equal(70, sig.Confidence)
	suite.InDelta(5000.0/1200.0, sig.Metrics["vol_spike"], 1e-9)
}

func (suite *StrategyTestSuite) TestVolumeWithoutSpikeIsNeutral() {
	sig := NewVolume().Evaluate(suite.trend(40, 100, 1, 1000), types.Interval1h)
	suite.Equal(types.DirectionNeutral, sig.Signal)
	suite.Equal(50, sig.Confidence)
	suite.InDelta(1.0, sig.Metrics["vol_spike"], 1e-9)
}

// ============================================================================
// Trend followers
// ============================================================================

func (suite *StrategyTestSuite) TestTrendFollowersAgreeOnSteadyUptrend() {
	series := suite.trend(260, 100, 1, 1000)

	for _, s := range []Strategy{NewSuperTrend(), NewIchimoku(), NewTextbook()} {
		sig := s.Evaluate(series, types.Interval1h)
		suite.Equal(types.DirectionBullish, sig.Signal, s.Name())
	}
}

func (suite *StrategyTestSuite) TestIchimokuNeutralBeforeCloudIsDefined() {
	ichimoku := NewIchimoku()
	suite.Equal(60, ichimoku.MinBars())

	sig := ichimoku.Evaluate(suite.trend(65, 100, 1, 1000), types.Interval1h)
	suite.Equal(types.NeutralSignal(), sig)
}

func (suite *StrategyTestSuite) TestRSIFlagsOverbought() {
	sig := NewRSI().Evaluate(suite.trend(60, 100, 1, 1000), types.Interval1h)
	suite.Equal(types.DirectionBullish, sig.Signal)
	suite.Equal(100, sig.Confidence)
	suite.Equal(1.0, sig.Metrics["overbought"])
	suite.Equal(0.0, sig.Metrics["oversold"])
}

func (suite *StrategyTestSuite) TestRSIFlagsOversold() {
	sig := NewRSI().Evaluate(suite.trend(60, 300, -1, 1000), types.Interval1h)
	suite.Equal(types.DirectionBearish, sig.Signal)
	suite.Equal(0.0, sig.Metrics["overbought"])
	suite.Equal(1.0, sig.Metrics["oversold"])
}
