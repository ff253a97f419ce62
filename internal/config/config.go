// Package config loads and validates the YAML settings file.
package config

import (
	"encoding/json"
	"os"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-signals/internal/journal"
	"github.com/rxtech-lab/argo-signals/internal/marketdata"
	"github.com/rxtech-lab/argo-signals/internal/strategy"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/internal/version"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Mode selects how the binary runs.
type Mode string

const (
	ModeLive     Mode = "live"
	ModeBacktest Mode = "backtest"
)

// Signals is the universe the collector evaluates.
type Signals struct {
	Intervals  []types.Interval `yaml:"intervals" json:"intervals" jsonschema:"title=Intervals,description=Bar intervals to evaluate,minItems=1" validate:"required,min=1"`
	Tickers    []string         `yaml:"tickers" json:"tickers" jsonschema:"title=Tickers,description=Symbols to trade,minItems=1" validate:"required,min=1,dive,required"`
	Strategies []string         `yaml:"strategies" json:"strategies" jsonschema:"title=Strategies,description=Evaluator names,minItems=1" validate:"required,min=1,dive,required"`
}

// MarketData selects where bars come from.
type MarketData struct {
	Provider     marketdata.ProviderType `yaml:"provider" json:"provider" jsonschema:"title=Provider,enum=binance,enum=polygon" validate:"required,oneof=binance polygon"`
	LookbackBars int                     `yaml:"lookback_bars" json:"lookback_bars" jsonschema:"title=Lookback Bars,minimum=0" validate:"gte=0"`
}

// Agent tunes the consensus decider and risk sizing.
type Agent struct {
	MinConfidence     int     `yaml:"min_confidence" json:"min_confidence" jsonschema:"minimum=0,maximum=100" validate:"gte=0,lte=100"`
	PositionFraction  float64 `yaml:"position_fraction" json:"position_fraction" jsonschema:"exclusiveMinimum=0,maximum=1" validate:"gt=0,lte=1"`
	AllowShort        bool    `yaml:"allow_short" json:"allow_short"`
	QuantityPrecision int     `yaml:"quantity_precision" json:"quantity_precision" jsonschema:"minimum=0,maximum=8" validate:"gte=0,lte=8"`
}

// Config is the whole settings file.
type Config struct {
	// Version, when set, must be compatible with the running binary.
	Version           string         `yaml:"version,omitempty" json:"version,omitempty"`
	Mode              Mode           `yaml:"mode" json:"mode" jsonschema:"enum=live,enum=backtest" validate:"required,oneof=live backtest"`
	StartDate         time.Time      `yaml:"start_date" json:"start_date"`
	EndDate           time.Time      `yaml:"end_date" json:"end_date"`
	PrimaryInterval   types.Interval `yaml:"primary_interval" json:"primary_interval" validate:"required"`
	InitialCash       float64        `yaml:"initial_cash" json:"initial_cash" validate:"gt=0"`
	MarginRequirement float64        `yaml:"margin_requirement" json:"margin_requirement" jsonschema:"exclusiveMinimum=0,maximum=1" validate:"gt=0,lte=1"`
	ShowReasoning     bool           `yaml:"show_reasoning" json:"show_reasoning"`
	Signals           Signals        `yaml:"signals" json:"signals"`

	LivePollSeconds                int  `yaml:"live_poll_seconds" json:"live_poll_seconds" jsonschema:"description=0 aligns cycles to the primary interval close" validate:"gte=0"`
	NotifyEnabled                  bool `yaml:"notify_enabled" json:"notify_enabled"`
	NotifyLiveTradeCooldownSeconds int  `yaml:"notify_live_trade_cooldown_seconds" json:"notify_live_trade_cooldown_seconds" validate:"gte=0"`
	NotifyLiveSummarySeconds       int  `yaml:"notify_live_summary_seconds" json:"notify_live_summary_seconds" jsonschema:"description=0 disables summaries" validate:"gte=0"`

	MarketData MarketData     `yaml:"market_data" json:"market_data"`
	Agent      Agent          `yaml:"agent" json:"agent"`
	Journal    journal.Config `yaml:"journal" json:"journal"`
	LogLevel   string         `yaml:"log_level" json:"log_level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the settings used for keys the file leaves out.
func Default() Config {
	return Config{
		Version:           "",
		Mode:              ModeLive,
		StartDate:         time.Time{},
		EndDate:           time.Time{},
		PrimaryInterval:   "",
		InitialCash:       100000,
		MarginRequirement: 0.5,
		ShowReasoning:     false,
		Signals: Signals{
			Intervals:  nil,
			Tickers:    nil,
			Strategies: nil,
		},
		LivePollSeconds:                60,
		NotifyEnabled:                  true,
		NotifyLiveTradeCooldownSeconds: 300,
		NotifyLiveSummarySeconds:       0,
		MarketData: MarketData{
			Provider:     marketdata.ProviderBinance,
			LookbackBars: 300,
		},
		Agent: Agent{
			MinConfidence:     60,
			PositionFraction:  0.2,
			AllowShort:        false,
			QuantityPrecision: 3,
		},
		Journal: journal.Config{
			Driver:     journal.DriverDuckDB,
			DSN:        ":memory:",
			ParquetDir: "",
		},
		LogLevel: "info",
	}
}

// Load reads and validates the settings file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeConfigReadFailed, err, "failed to read config %s", path)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	config := Default()

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigParseFailed, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks struct tags, interval membership, the backtest window and
// the version pin.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterStructValidation(validateConfig, Config{})

	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if c.Version != "" {
		if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
			return err
		}
	}

	return nil
}

func validateConfig(sl validator.StructLevel) {
	c, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}

	for _, interval := range c.Signals.Intervals {
		if !interval.Valid() {
			sl.ReportError(c.Signals.Intervals, "Signals.Intervals", "intervals", "interval", string(interval))
		}
	}

	if !slices.Contains(c.Signals.Intervals, c.PrimaryInterval) {
		sl.ReportError(c.PrimaryInterval, "PrimaryInterval", "primary_interval", "primary_in_intervals", "")
	}

	registry := strategy.DefaultRegistry()

	for _, name := range c.Signals.Strategies {
		if name != strategy.NameMultiTimeframe && !registry.Known(name) {
			sl.ReportError(c.Signals.Strategies, "Signals.Strategies", "strategies", "strategy", name)
		}
	}

	if c.Mode == ModeBacktest && !c.EndDate.After(c.StartDate) {
		sl.ReportError(c.EndDate, "EndDate", "end_date", "after_start_date", "")
	}
}

// PollInterval is the fixed live sleep, 0 for bar-aligned cycles.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.LivePollSeconds) * time.Second
}

// TradeCooldown is the per-ticker trade notification cooldown.
func (c *Config) TradeCooldown() time.Duration {
	return time.Duration(c.NotifyLiveTradeCooldownSeconds) * time.Second
}

// SummaryInterval is the portfolio summary cooldown, 0 when disabled.
func (c *Config) SummaryInterval() time.Duration {
	return time.Duration(c.NotifyLiveSummarySeconds) * time.Second
}

// Schema returns the JSON schema of the settings file.
func Schema() (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(&Config{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnknown, "failed to marshal config schema", err)
	}

	return string(data), nil
}
