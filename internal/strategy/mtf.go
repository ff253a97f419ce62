package strategy

import (
	"math"
	"sort"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Entry types reported by the aggregator.
const (
	EntryBreakout  = "breakout"
	EntryBreakdown = "breakdown"
	EntryPullback  = "pullback"
)

// Bias is the trend read from the higher timeframe.
type Bias struct {
	Direction  types.Direction
	Confidence float64
	Score      float64
	Strength   float64
}

// Entry is the setup found on the lower timeframe.
type Entry struct {
	Direction   types.Direction
	Type        string
	StopLoss    float64
	TakeProfit  float64
	ATR         float64
	VolumeSpike optional.Option[float64]
}

func neutralEntry() Entry {
	return Entry{
		Direction:   types.DirectionNeutral,
		Type:        "",
		StopLoss:    0,
		TakeProfit:  0,
		ATR:         0,
		VolumeSpike: optional.None[float64](),
	}
}

// MultiTimeframe fuses a higher-timeframe trend vote with a lower-timeframe
// breakout or pullback entry.
type MultiTimeframe struct {
	emaFast       int
	emaSlow       int
	adxPeriod     int
	channelWindow int
	stPeriod      int
	stMultiplier  float64
	entryEMA      int
	entryRSI      int
	entryATR      int
	volumeWindow  int
	volumeConfirm float64
}

// NewMultiTimeframe returns the aggregator with its standard parameters.
func NewMultiTimeframe() *MultiTimeframe {
	return &MultiTimeframe{
		emaFast:       50,
		emaSlow:       200,
		adxPeriod:     14,
		channelWindow: 20,
		stPeriod:      10,
		stMultiplier:  3,
		entryEMA:      20,
		entryRSI:      14,
		entryATR:      14,
		volumeWindow:  20,
		volumeConfirm: 1.3,
	}
}

func (m *MultiTimeframe) Name() string { return NameMultiTimeframe }

// SelectTimeframes picks the slowest (higher) and fastest (lower) ranked
// intervals. ok is false when none of the intervals is ranked.
func SelectTimeframes(intervals []types.Interval) (higher, lower types.Interval, ok bool) {
	ranked := make([]types.Interval, 0, len(intervals))

	for _, iv := range intervals {
		if _, known := iv.Rank(); known {
			ranked = append(ranked, iv)
		}
	}

	if len(ranked) == 0 {
		return "", "", false
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ri, _ := ranked[i].Rank()
		rj, _ := ranked[j].Rank()

		return ri < rj
	})

	return ranked[len(ranked)-1], ranked[0], true
}

// Evaluate returns the fused signal. The signal direction is the entry's and
// its confidence is the bias confidence, or 50 without an entry.
func (m *MultiTimeframe) Evaluate(higher, lower types.PriceSeries) types.StrategySignal {
	labels := map[string]string{
		"higher_tf": higher.Interval.String(),
		"lower_tf":  lower.Interval.String(),
	}

	if higher.Empty() || lower.Empty() {
		sig := types.NeutralSignal()
		sig.Labels = labels

		return sig
	}

	bias := m.Bias(higher)
	entry := m.Entry(lower, bias.Direction)

	labels["bias"] = string(bias.Direction)
	metrics := map[string]float64{}

	if entry.Type != "" {
		labels["entry_type"] = entry.Type
		metrics["sl"] = entry.StopLoss
		metrics["tp"] = entry.TakeProfit
		metrics["atr"] = entry.ATR
	}

	if spike, err := entry.VolumeSpike.Take(); err == nil {
		metrics["vol_spike"] = spike
	}

	confidence := types.NeutralConfidence
	if entry.Direction != types.DirectionNeutral {
		confidence = biasPercent(bias.Confidence)
	}

	return types.StrategySignal{
		Signal:     entry.Direction,
		Confidence: confidence,
		Metrics:    metrics,
		Labels:     labels,
	}
}

// Bias runs the weighted trend vote on the higher timeframe.
func (m *MultiTimeframe) Bias(series types.PriceSeries) Bias {
	highs, lows, closes := series.Highs(), series.Lows(), series.Closes()
	last, _ := series.Last()

	pos := optional.None[float64]()
	if p, ok := indicator.Donchian(highs, lows, m.channelWindow).Position(last.Close, 1); ok {
		pos = optional.Some(p)
	}

	adx := indicator.Last(indicator.ADX(highs, lows, closes, m.adxPeriod).ADX).TakeOr(20)

	return scoreBias(m.emaBias(closes), m.ichimokuBias(series), m.superTrendDirection(series), pos, adx)
}

// scoreBias combines the component votes into a bias. The moving-average
// cross weighs 0.35, the cloud and supertrend 0.25 each. The channel position
// adds +-0.15 outside its 40-60% band. The sum is scaled by ADX/50 clamped to
// [0.4, 1] and must strictly exceed 0.15 in magnitude to pick a side.
func scoreBias(ema, cloud, st types.Direction, pos optional.Option[float64], adx float64) Bias {
	score := 0.0
	vote := func(dir types.Direction, weight float64) {
		switch dir {
		case types.DirectionBullish:
			score += weight
		case types.DirectionBearish:
			score -= weight
		}
	}

	vote(ema, 0.35)
	vote(cloud, 0.25)
	vote(st, 0.25)

	if p, err := pos.Take(); err == nil {
		switch {
		case p > 0.6:
			score += 0.15
		case p < 0.4:
			score -= 0.15
		}
	}

	strength := indicator.Clamp(adx/50, 0.4, 1)
	final := score * strength

	bias := Bias{Direction: types.DirectionNeutral, Confidence: 0.5, Score: score, Strength: strength}

	switch {
	case final > 0.15:
		bias.Direction = types.DirectionBullish
		bias.Confidence = math.Min(1, 0.5+final)
	case final < -0.15:
		bias.Direction = types.DirectionBearish
		bias.Confidence = math.Min(1, 0.5+math.Abs(final))
	}

	return bias
}

// biasPercent converts a bias confidence to a percentage, truncating the
// fraction.
func biasPercent(c float64) int {
	if math.IsNaN(c) {
		return 0
	}

	return int(indicator.Clamp(c, 0, 1) * 100)
}

func (m *MultiTimeframe) emaBias(closes []float64) types.Direction {
	v, ok := latest(indicator.EMA(closes, m.emaFast), indicator.EMA(closes, m.emaSlow))
	if !ok {
		return types.DirectionNeutral
	}

	switch {
	case v[0] > v[1]:
		return types.DirectionBullish
	case v[0] < v[1]:
		return types.DirectionBearish
	default:
		return types.DirectionNeutral
	}
}

func (m *MultiTimeframe) ichimokuBias(series types.PriceSeries) types.Direction {
	cloud := indicator.Ichimoku(series.Highs(), series.Lows())

	v, ok := latest(cloud.Tenkan, cloud.Kijun, cloud.Top, cloud.Bottom)
	if !ok {
		return types.DirectionNeutral
	}

	last, _ := series.Last()

	return cloudBias(last.Close, v[0], v[1], v[2], v[3])
}

func (m *MultiTimeframe) superTrendDirection(series types.PriceSeries) types.Direction {
	bands, ok := superTrendBands(series, m.stPeriod, m.stMultiplier)
	if !ok {
		return types.DirectionNeutral
	}

	last, _ := series.Last()

	switch {
	case last.Close > bands.lower:
		return types.DirectionBullish
	case last.Close < bands.upper:
		return types.DirectionBearish
	default:
		return types.DirectionNeutral
	}
}

// Entry looks for a breakout in the bias direction first and falls back to a
// pullback. A neutral bias never produces an entry.
func (m *MultiTimeframe) Entry(series types.PriceSeries, bias types.Direction) Entry {
	if bias == types.DirectionNeutral || series.Len() < 2 {
		return neutralEntry()
	}

	closes := series.Closes()
	highs, lows := series.Highs(), series.Lows()

	v, ok := latest(
		indicator.EMA(closes, m.entryEMA),
		indicator.RSI(closes, m.entryRSI),
		indicator.ATR(highs, lows, closes, m.entryATR),
	)
	if !ok {
		return neutralEntry()
	}

	ema20, rsi, atr := v[0], v[1], v[2]
	lastClose, prevClose := closes[len(closes)-1], closes[len(closes)-2]
	spike := m.volumeSpike(series)
	confirmed := spike.IsNone() || spike.Unwrap() >= m.volumeConfirm
	ch := priorChannel(series, m.channelWindow)

	entry := neutralEntry()
	entry.VolumeSpike = spike
	entry.ATR = atr

	switch bias {
	case types.DirectionBullish:
		if upper := indicator.Last(ch.Upper); upper.IsSome() && lastClose > upper.Unwrap() && confirmed {
			return m.fill(entry, types.DirectionBullish, EntryBreakout, lastClose, 1.5*atr, 2.5*atr)
		}

		if lastClose > ema20 && rsi >= 50 && lastClose > prevClose {
			return m.fill(entry, types.DirectionBullish, EntryPullback, lastClose, 1.3*atr, 2.0*atr)
		}
	case types.DirectionBearish:
		if lower := indicator.Last(ch.Lower); lower.IsSome() && lastClose < lower.Unwrap() && confirmed {
			return m.fill(entry, types.DirectionBearish, EntryBreakdown, lastClose, 1.5*atr, 2.5*atr)
		}

		if lastClose < ema20 && rsi <= 50 && lastClose < prevClose {
			return m.fill(entry, types.DirectionBearish, EntryPullback, lastClose, 1.3*atr, 2.0*atr)
		}
	}

	return entry
}

func (m *MultiTimeframe) fill(e Entry, dir types.Direction, kind string, closePrice, stop, target float64) Entry {
	e.Direction = dir
	e.Type = kind

	if dir == types.DirectionBullish {
		e.StopLoss = closePrice - stop
		e.TakeProfit = closePrice + target
	} else {
		e.StopLoss = closePrice + stop
		e.TakeProfit = closePrice - target
	}

	return e
}

// volumeSpike is latest volume over its rolling mean. It is None when the feed
// carries no volume at all or the mean is not yet defined.
func (m *MultiTimeframe) volumeSpike(series types.PriceSeries) optional.Option[float64] {
	volumes := series.Volumes()

	hasVolume := false

	for _, v := range volumes {
		if v > 0 {
			hasVolume = true

			break
		}
	}

	if !hasVolume {
		return optional.None[float64]()
	}

	ma := indicator.Last(indicator.SMA(volumes, m.volumeWindow))
	if ma.IsNone() {
		return optional.None[float64]()
	}

	return optional.Some(volumes[len(volumes)-1] / math.Max(indicator.Epsilon, ma.Unwrap()))
}
