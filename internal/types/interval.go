package types

import (
	"time"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// Interval is a bar duration such as "5m" or "1d".
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval2h  Interval = "2h"
	Interval4h  Interval = "4h"
	Interval6h  Interval = "6h"
	Interval8h  Interval = "8h"
	Interval12h Interval = "12h"
	Interval1d  Interval = "1d"
	Interval3d  Interval = "3d"
	Interval1w  Interval = "1w"
)

var intervalDurations = map[Interval]time.Duration{
	Interval1m:  time.Minute,
	Interval3m:  3 * time.Minute,
	Interval5m:  5 * time.Minute,
	Interval15m: 15 * time.Minute,
	Interval30m: 30 * time.Minute,
	Interval1h:  time.Hour,
	Interval2h:  2 * time.Hour,
	Interval4h:  4 * time.Hour,
	Interval6h:  6 * time.Hour,
	Interval8h:  8 * time.Hour,
	Interval12h: 12 * time.Hour,
	Interval1d:  24 * time.Hour,
	Interval3d:  72 * time.Hour,
	Interval1w:  7 * 24 * time.Hour,
}

// intervalRank orders the intervals the multi-timeframe aggregator understands.
var intervalRank = map[Interval]int{
	Interval5m:  1,
	Interval15m: 2,
	Interval30m: 3,
	Interval1h:  4,
	Interval4h:  5,
	Interval1d:  6,
	Interval3d:  7,
	Interval1w:  8,
}

// ParseInterval validates s and returns it as an Interval.
func ParseInterval(s string) (Interval, error) {
	iv := Interval(s)
	if _, ok := intervalDurations[iv]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unknown interval %q", s)
	}

	return iv, nil
}

// Valid reports whether the interval has a known duration.
func (i Interval) Valid() bool {
	_, ok := intervalDurations[i]

	return ok
}

// Duration returns the bar length, or zero for unknown intervals.
func (i Interval) Duration() time.Duration {
	return intervalDurations[i]
}

// Rank returns the position of the interval in the aggregator's ordering.
// ok is false for intervals outside the rank table.
func (i Interval) Rank() (rank int, ok bool) {
	rank, ok = intervalRank[i]

	return rank, ok
}

// Floor truncates t to the start of the bar containing it, counting
// boundaries from the Unix epoch in UTC.
func (i Interval) Floor(t time.Time) time.Time {
	d := i.Duration()
	if d <= 0 {
		return t.UTC()
	}

	step := int64(d / time.Second)
	secs := t.UTC().Unix()
	rem := secs % step
	if rem < 0 {
		rem += step
	}

	return time.Unix(secs-rem, 0).UTC()
}

// NextClose returns the end of the bar containing t.
func (i Interval) NextClose(t time.Time) time.Time {
	return i.Floor(t).Add(i.Duration())
}

func (i Interval) String() string {
	return string(i)
}
