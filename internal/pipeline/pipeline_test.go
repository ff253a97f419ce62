package pipeline

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/agent"
	"github.com/rxtech-lab/argo-signals/internal/collector"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/strategy"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/mocks"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PipelineTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	provider  *mocks.MockProvider
	decider   *mocks.MockDecider
	collector *collector.Collector
	asOf      time.Time
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (s *PipelineTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.provider = mocks.NewMockProvider(s.ctrl)
	s.decider = mocks.NewMockDecider(s.ctrl)

	c, err := collector.New(strategy.DefaultRegistry(), []string{"donchian", "rsi"}, logger.NewNop())
	s.Require().NoError(err)

	s.collector = c
	s.asOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
}

func (s *PipelineTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *PipelineTestSuite) newPipeline() *Pipeline {
	p, err := New(Config{
		PrimaryInterval:  types.Interval1h,
		LookbackBars:     120,
		PositionFraction: 0.2,
		MaxConcurrency:   2,
	}, s.provider, s.collector, s.decider, logger.NewNop())
	s.Require().NoError(err)

	return p
}

// rising returns n bars ending one interval before asOf whose last close is last.
func (s *PipelineTestSuite) rising(ticker string, interval types.Interval, n int, last float64) types.PriceSeries {
	bars := make([]types.Bar, n)
	start := s.asOf.Add(-time.Duration(n) * interval.Duration())

	for i := range bars {
		c := last - float64(n-1-i)*0.1
		bars[i] = types.Bar{
			Time:   start.Add(time.Duration(i) * interval.Duration()),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}

	return types.NewPriceSeries(ticker, interval, bars)
}

// ============================================================================
// Constructor
// ============================================================================

func (s *PipelineTestSuite) TestNewValidation() {
	_, err := New(Config{PrimaryInterval: types.Interval1h}, nil, s.collector, s.decider, nil)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = New(Config{PrimaryInterval: "2m"}, s.provider, s.collector, s.decider, nil)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidInterval))

	p, err := New(Config{PrimaryInterval: types.Interval1h}, s.provider, s.collector, s.decider, nil)
	s.Require().NoError(err)
	s.Equal(DefaultLookbackBars, p.config.LookbackBars)
	s.InDelta(DefaultPositionFraction, p.config.PositionFraction, 1e-9)
	s.Equal(DefaultMaxConcurrency, p.config.MaxConcurrency)
}

// ============================================================================
// Run
// ============================================================================

func (s *PipelineTestSuite) TestRunBuildsAnalysisAndRisk() {
	intervals := []types.Interval{types.Interval1h, types.Interval1d}

	for _, ticker := range []string{"AAPL", "MSFT"} {
		for _, interval := range intervals {
			last := 100.0
			if ticker == "MSFT" {
				last = 50
			}

			s.provider.EXPECT().
				FetchSeries(gomock.Any(), ticker, interval, s.asOf, 120).
				Return(s.rising(ticker, interval, 60, last), nil)
		}
	}

	portfolio := types.PortfolioSnapshot{
		Cash:              10000,
		MarginRequirement: 0.5,
		MarginUsed:        0,
		Positions:         map[string]types.Position{"AAPL": {Long: 10, Short: 0, ShortMargin: 0}},
	}

	s.decider.EXPECT().Decide(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input agent.DecisionInput) (map[string]types.Decision, error) {
			s.Equal(types.Interval1h, input.PrimaryInterval)
			s.Equal(s.asOf, input.AsOf)

			for _, ticker := range []string{"AAPL", "MSFT"} {
				for _, interval := range intervals {
					rec, ok := input.Analysis.Record(ticker, interval)
					s.True(ok, "%s %s", ticker, interval)
					s.Contains(rec.StrategySignals, "donchian")
					s.Contains(rec.StrategySignals, "rsi")
				}
			}

			// value = 10000 + 10*100 = 11000; limit = 0.2*11000 - 1000
			s.InDelta(100, input.Risk["AAPL"].CurrentPrice, 1e-9)
			s.InDelta(1200, input.Risk["AAPL"].PositionLimit, 1e-9)
			s.InDelta(50, input.Risk["MSFT"].CurrentPrice, 1e-9)
			s.InDelta(2200, input.Risk["MSFT"].PositionLimit, 1e-9)

			return map[string]types.Decision{"AAPL": {Action: types.ActionBuy, Quantity: 12, Confidence: 80, Reasoning: ""}}, nil
		})

	result, err := s.newPipeline().Run(context.Background(), agent.Request{
		Tickers:   []string{"AAPL", "MSFT"},
		Intervals: intervals,
		Portfolio: portfolio,
		AsOf:      s.asOf,
	})
	s.Require().NoError(err)

	s.Equal(types.ActionBuy, result.Decision("AAPL").Action)
	s.Equal(types.ActionHold, result.Decision("MSFT").Action)
	s.InDelta(100, result.CurrentPrice("AAPL"), 1e-9)
	s.InDelta(50, result.CurrentPrice("MSFT"), 1e-9)
	s.Len(result.Analysis, 2)
}

func (s *PipelineTestSuite) TestRunToleratesPartialFetchFailure() {
	s.provider.EXPECT().
		FetchSeries(gomock.Any(), "AAPL", types.Interval1h, s.asOf, 120).
		Return(s.rising("AAPL", types.Interval1h, 60, 100), nil)
	s.provider.EXPECT().
		FetchSeries(gomock.Any(), "MSFT", types.Interval1h, s.asOf, 120).
		Return(types.PriceSeries{}, errors.New(errors.ErrCodeMarketDataFetchFailed, "rate limited"))

	s.decider.EXPECT().Decide(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input agent.DecisionInput) (map[string]types.Decision, error) {
			s.InDelta(0, input.Risk["MSFT"].CurrentPrice, 1e-9)
			s.InDelta(100, input.Risk["AAPL"].CurrentPrice, 1e-9)

			return map[string]types.Decision{}, nil
		})

	result, err := s.newPipeline().Run(context.Background(), agent.Request{
		Tickers:   []string{"AAPL", "MSFT"},
		Intervals: []types.Interval{types.Interval1h},
		Portfolio: types.PortfolioSnapshot{Cash: 1000, MarginRequirement: 0.5, MarginUsed: 0, Positions: nil},
		AsOf:      s.asOf,
	})
	s.Require().NoError(err)
	s.InDelta(0, result.CurrentPrice("MSFT"), 1e-9)
}

func (s *PipelineTestSuite) TestRunFailsWithoutAnyData() {
	s.provider.EXPECT().
		FetchSeries(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.PriceSeries{}, stderrors.New("offline")).
		Times(2)

	_, err := s.newPipeline().Run(context.Background(), agent.Request{
		Tickers:   []string{"AAPL", "MSFT"},
		Intervals: []types.Interval{types.Interval1h},
		Portfolio: types.PortfolioSnapshot{Cash: 1000, MarginRequirement: 0.5, MarginUsed: 0, Positions: nil},
		AsOf:      s.asOf,
	})
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeNoDataFound))
}

func (s *PipelineTestSuite) TestRunWrapsDeciderFailure() {
	s.provider.EXPECT().
		FetchSeries(gomock.Any(), "AAPL", types.Interval1h, s.asOf, 120).
		Return(s.rising("AAPL", types.Interval1h, 60, 100), nil)
	s.decider.EXPECT().Decide(gomock.Any(), gomock.Any()).Return(nil, stderrors.New("no quorum"))

	_, err := s.newPipeline().Run(context.Background(), agent.Request{
		Tickers:   []string{"AAPL"},
		Intervals: []types.Interval{types.Interval1h},
		Portfolio: types.PortfolioSnapshot{Cash: 1000, MarginRequirement: 0.5, MarginUsed: 0, Positions: nil},
		AsOf:      s.asOf,
	})
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeAgentFailed))
}

// ============================================================================
// Risk
// ============================================================================

func (s *PipelineTestSuite) TestRiskShortExposureReducesLimit() {
	evalCtx := collector.NewEvaluationContext([]string{"X"}, []types.Interval{types.Interval1h}, s.asOf)
	evalCtx.SetSeries(s.rising("X", types.Interval1h, 5, 100))

	risk := s.newPipeline().Risk(evalCtx, types.PortfolioSnapshot{
		Cash:              7500,
		MarginRequirement: 0.5,
		MarginUsed:        2500,
		Positions:         map[string]types.Position{"X": {Long: 0, Short: 5, ShortMargin: 2500}},
	})

	// value = 7500 - 500 = 7000; limit = 1400 - 500
	s.InDelta(900, risk["X"].PositionLimit, 1e-9)
	s.NotEmpty(risk["X"].Reasoning)
}

func (s *PipelineTestSuite) TestRiskNeverNegative() {
	evalCtx := collector.NewEvaluationContext([]string{"X"}, []types.Interval{types.Interval1h}, s.asOf)
	evalCtx.SetSeries(s.rising("X", types.Interval1h, 5, 100))

	risk := s.newPipeline().Risk(evalCtx, types.PortfolioSnapshot{
		Cash:              0,
		MarginRequirement: 0.5,
		MarginUsed:        0,
		Positions:         map[string]types.Position{"X": {Long: 100, Short: 0, ShortMargin: 0}},
	})

	s.InDelta(0, risk["X"].PositionLimit, 1e-9)
}
