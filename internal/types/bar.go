package types

import "time"

// Bar is one OHLCV candle.
type Bar struct {
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// PriceSeries is the ordered bar history of one ticker on one interval.
// Timestamps are strictly increasing.
type PriceSeries struct {
	Ticker   string   `json:"ticker"`
	Interval Interval `json:"interval"`
	Bars     []Bar    `json:"bars"`
}

// NewPriceSeries builds a series from bars, keeping only bars whose
// timestamp is strictly after the previously kept one.
func NewPriceSeries(ticker string, interval Interval, bars []Bar) PriceSeries {
	s := PriceSeries{Ticker: ticker, Interval: interval, Bars: make([]Bar, 0, len(bars))}

	return s.Append(bars...)
}

// Len returns the number of bars.
func (s PriceSeries) Len() int {
	return len(s.Bars)
}

// Empty reports whether the series has no bars.
func (s PriceSeries) Empty() bool {
	return len(s.Bars) == 0
}

// Append returns a new series with bars added at the end. Bars that do not
// advance the last timestamp are dropped so the series stays strictly ordered.
func (s PriceSeries) Append(bars ...Bar) PriceSeries {
	out := PriceSeries{
		Ticker:   s.Ticker,
		Interval: s.Interval,
		Bars:     make([]Bar, len(s.Bars), len(s.Bars)+len(bars)),
	}
	copy(out.Bars, s.Bars)

	for _, b := range bars {
		if n := len(out.Bars); n > 0 && !b.Time.After(out.Bars[n-1].Time) {
			continue
		}

		out.Bars = append(out.Bars, b)
	}

	return out
}

// Until returns the prefix of the series whose bars opened at or before t.
func (s PriceSeries) Until(t time.Time) PriceSeries {
	n := len(s.Bars)
	for n > 0 && s.Bars[n-1].Time.After(t) {
		n--
	}

	return PriceSeries{Ticker: s.Ticker, Interval: s.Interval, Bars: s.Bars[:n]}
}

// Tail returns the last n bars (or all of them when n exceeds the length).
func (s PriceSeries) Tail(n int) PriceSeries {
	if n <= 0 || n >= len(s.Bars) {
		return s
	}

	return PriceSeries{Ticker: s.Ticker, Interval: s.Interval, Bars: s.Bars[len(s.Bars)-n:]}
}

// Last returns the most recent bar.
func (s PriceSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}

	return s.Bars[len(s.Bars)-1], true
}

func (s PriceSeries) Opens() []float64 { return s.column(func(b Bar) float64 { return b.Open }) }
func (s PriceSeries) Highs() []float64 { return s.column(func(b Bar) float64 { return b.High }) }
func (s PriceSeries) Lows() []float64 { return s.column(func(b Bar) float64 { return b.Low }) }
func (s PriceSeries) Closes() []float64 { return s.column(func(b Bar) float64 { return b.Close }) }
func (s PriceSeries) Volumes() []float64 { return s.column(func(b Bar) float64 { return b.Volume }) }

func (s PriceSeries) column(pick func(Bar) float64) []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = pick(b)
	}

	return out
}
