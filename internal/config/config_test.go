package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/journal"
	"github.com/rxtech-lab/argo-signals/internal/marketdata"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

const minimalYAML = `
mode: live
primary_interval: 1h
signals:
  intervals: [15m, 1h, 1d]
  tickers: [BTCUSDT, ETHUSDT]
  strategies: [donchian, rsi, mtf_trend_entry]
`

func (suite *ConfigTestSuite) TestParseAppliesDefaults() {
	config, err := Parse([]byte(minimalYAML))
	suite.Require().NoError(err)

	suite.Equal(ModeLive, config.Mode)
	suite.Equal(types.Interval1h, config.PrimaryInterval)
	suite.Equal([]string{"BTCUSDT", "ETHUSDT"}, config.Signals.Tickers)
	suite.Equal(60, config.LivePollSeconds)
	suite.True(config.NotifyEnabled)
	suite.Equal(300, config.NotifyLiveTradeCooldownSeconds)
	suite.Equal(0, config.NotifyLiveSummarySeconds)
	suite.Equal(marketdata.ProviderBinance, config.MarketData.Provider)
	suite.Equal(journal.DriverDuckDB, config.Journal.Driver)
	suite.InDelta(0.5, config.MarginRequirement, 1e-9)

	suite.Equal(time.Minute, config.PollInterval())
	suite.Equal(5*time.Minute, config.TradeCooldown())
	suite.Equal(time.Duration(0), config.SummaryInterval())
}

func (suite *ConfigTestSuite) TestParseFullFile() {
	data := `
mode: backtest
start_date: 2024-01-01
end_date: 2024-03-01T00:00:00Z
primary_interval: 4h
initial_cash: 25000
margin_requirement: 0.3
show_reasoning: true
signals:
  intervals: [4h, 1d]
  tickers: [AAPL]
  strategies: [textbook]
live_poll_seconds: 0
notify_enabled: false
notify_live_trade_cooldown_seconds: 60
notify_live_summary_seconds: 900
market_data:
  provider: polygon
  lookback_bars: 500
agent:
  min_confidence: 70
  position_fraction: 0.1
  allow_short: true
  quantity_precision: 0
journal:
  driver: postgres
  dsn: postgres://localhost/signals
log_level: debug
`

	config, err := Parse([]byte(data))
	suite.Require().NoError(err)

	suite.Equal(ModeBacktest, config.Mode)
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), config.StartDate.UTC())
	suite.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), config.EndDate.UTC())
	suite.InDelta(25000, config.InitialCash, 1e-9)
	suite.True(config.ShowReasoning)
	suite.Equal(time.Duration(0), config.PollInterval())
	suite.False(config.NotifyEnabled)
	suite.Equal(15*time.Minute, config.SummaryInterval())
	suite.Equal(marketdata.ProviderPolygon, config.MarketData.Provider)
	suite.Equal(500, config.MarketData.LookbackBars)
	suite.Equal(70, config.Agent.MinConfidence)
	suite.True(config.Agent.AllowShort)
	suite.Equal(journal.DriverPostgres, config.Journal.Driver)
	suite.Equal("debug", config.LogLevel)
}

func (suite *ConfigTestSuite) TestValidationFailures() {
	tests := []struct {
		name string
		yaml string
		code errors.ErrorCode
	}{
		{
			name: "primary interval not in intervals",
			yaml: "mode: live\nprimary_interval: 4h\nsignals: {intervals: [1h, 1d], tickers: [X], strategies: [rsi]}\n",
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "unknown interval",
			yaml: "mode: live\nprimary_interval: 1h\nsignals: {intervals: [1h, 7m], tickers: [X], strategies: [rsi]}\n",
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "unknown strategy",
			yaml: "mode: live\nprimary_interval: 1h\nsignals: {intervals: [1h], tickers: [X], strategies: [astrology]}\n",
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "no tickers",
			yaml: "mode: live\nprimary_interval: 1h\nsignals: {intervals: [1h], tickers: [], strategies: [rsi]}\n",
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "bad mode",
			yaml: "mode: paper\nprimary_interval: 1h\nsignals: {intervals: [1h], tickers: [X], strategies: [rsi]}\n",
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "backtest without window",
			yaml: "mode: backtest\nprimary_interval: 1h\nsignals: {intervals: [1h], tickers: [X], strategies: [rsi]}\n",
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "negative poll",
			yaml: "mode: live\nprimary_interval: 1h\nlive_poll_seconds: -1\nsignals: {intervals: [1h], tickers: [X], strategies: [rsi]}\n",
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "position fraction above one",
			yaml: "mode: live\nprimary_interval: 1h\nagent: {position_fraction: 1.5}\nsignals: {intervals: [1h], tickers: [X], strategies: [rsi]}\n",
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "zero margin requirement",
			yaml: "mode: live\nprimary_interval: 1h\nmargin_requirement: 0\nsignals: {intervals: [1h], tickers: [X], strategies: [rsi]}\n",
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "margin requirement above one",
			yaml: "mode: live\nprimary_interval: 1h\nmargin_requirement: 1.5\nsignals: {intervals: [1h], tickers: [X], strategies: [rsi]}\n",
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "incompatible version",
			yaml: "version: 9.0.0\nmode: live\nprimary_interval: 1h\nsignals: {intervals: [1h], tickers: [X], strategies: [rsi]}\n",
			code: errors.ErrCodeVersionMismatch,
		},
		{
			name: "malformed yaml",
			yaml: "mode: [live\n",
			code: errors.ErrCodeConfigParseFailed,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := Parse([]byte(tc.yaml))
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *ConfigTestSuite) TestLoad() {
	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(minimalYAML), 0644))

	config, err := Load(path)
	suite.Require().NoError(err)
	suite.Equal(types.Interval1h, config.PrimaryInterval)

	_, err = Load(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.True(errors.HasCode(err, errors.ErrCodeConfigReadFailed))
}

func (suite *ConfigTestSuite) TestSchema() {
	schema, err := Schema()
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &decoded))

	properties, ok := decoded["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "primary_interval")
	suite.Contains(properties, "signals")
	suite.Contains(properties, "notify_live_trade_cooldown_seconds")
	suite.Contains(properties, "journal")
}
