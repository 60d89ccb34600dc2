package marketdata

import (
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// Timeframe is the bar interval requested from a PriceSource.
type Timeframe string

const (
	TimeframeOneMinute      Timeframe = "1m"
	TimeframeThreeMinutes   Timeframe = "3m"
	TimeframeFiveMinutes    Timeframe = "5m"
	TimeframeFifteenMinutes Timeframe = "15m"
	TimeframeThirtyMinutes  Timeframe = "30m"
	TimeframeOneHour        Timeframe = "1h"
	TimeframeTwoHours       Timeframe = "2h"
	TimeframeFourHours      Timeframe = "4h"
	TimeframeSixHours       Timeframe = "6h"
	TimeframeEightHours     Timeframe = "8h"
	TimeframeTwelveHours    Timeframe = "12h"
	TimeframeOneDay         Timeframe = "1d"
	TimeframeOneWeek        Timeframe = "1w"
)

var timeframeDurations = map[Timeframe]time.Duration{
	TimeframeOneMinute:      time.Minute,
	TimeframeThreeMinutes:   3 * time.Minute,
	TimeframeFiveMinutes:    5 * time.Minute,
	TimeframeFifteenMinutes: 15 * time.Minute,
	TimeframeThirtyMinutes:  30 * time.Minute,
	TimeframeOneHour:        time.Hour,
	TimeframeTwoHours:       2 * time.Hour,
	TimeframeFourHours:      4 * time.Hour,
	TimeframeSixHours:       6 * time.Hour,
	TimeframeEightHours:     8 * time.Hour,
	TimeframeTwelveHours:    12 * time.Hour,
	TimeframeOneDay:         24 * time.Hour,
	TimeframeOneWeek:        7 * 24 * time.Hour,
}

// ParseTimeframe converts a string such as "5m" into a Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if !tf.IsValid() {
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %q", s)
	}

	return tf, nil
}

// IsValid reports whether t is one of the supported timeframes.
func (t Timeframe) IsValid() bool {
	_, ok := timeframeDurations[t]
	return ok
}

// Duration returns the length of one bar, or 0 for an unknown timeframe.
func (t Timeframe) Duration() time.Duration {
	return timeframeDurations[t]
}

// Minutes returns the length of one bar in minutes.
func (t Timeframe) Minutes() int {
	return int(t.Duration() / time.Minute)
}

// Multiplier returns the count of base units, e.g. 15 for "15m" and 4 for "4h".
func (t Timeframe) Multiplier() int {
	switch t {
	case TimeframeThreeMinutes:
		return 3
	case TimeframeFiveMinutes:
		return 5
	case TimeframeFifteenMinutes:
		return 15
	case TimeframeThirtyMinutes:
		return 30
	case TimeframeTwoHours:
		return 2
	case TimeframeFourHours:
		return 4
	case TimeframeSixHours:
		return 6
	case TimeframeEightHours:
		return 8
	case TimeframeTwelveHours:
		return 12
	default:
		return 1
	}
}

// PolygonTimespan returns the polygon aggregate unit for t.
func (t Timeframe) PolygonTimespan() models.Timespan {
	switch t {
	case TimeframeOneMinute, TimeframeThreeMinutes, TimeframeFiveMinutes, TimeframeFifteenMinutes, TimeframeThirtyMinutes:
		return models.Minute
	case TimeframeOneHour, TimeframeTwoHours, TimeframeFourHours, TimeframeSixHours, TimeframeEightHours, TimeframeTwelveHours:
		return models.Hour
	case TimeframeOneWeek:
		return models.Week
	default:
		return models.Day
	}
}

// BinanceInterval returns the kline interval string. Binance uses the same
// notation for every supported timeframe.
func (t Timeframe) BinanceInterval() string {
	return string(t)
}

// SupportedTimeframes lists every timeframe in ascending duration.
func SupportedTimeframes() []Timeframe {
	return []Timeframe{
		TimeframeOneMinute, TimeframeThreeMinutes, TimeframeFiveMinutes, TimeframeFifteenMinutes,
		TimeframeThirtyMinutes, TimeframeOneHour, TimeframeTwoHours, TimeframeFourHours,
		TimeframeSixHours, TimeframeEightHours, TimeframeTwelveHours, TimeframeOneDay, TimeframeOneWeek,
	}
}
