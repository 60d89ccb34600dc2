package types

import (
	"math"
	"time"
)

// Bar is one OHLCV sample for a fixed interval. A NaN price field marks
// the value as missing.
type Bar struct {
	Timestamp time.Time `json:"timestamp" csv:"time"`
	Open      float64   `json:"open" csv:"open"`
	High      float64   `json:"high" csv:"high"`
	Low       float64   `json:"low" csv:"low"`
	Close     float64   `json:"close" csv:"close"`
	Volume    float64   `json:"volume,omitempty" csv:"volume"`
}

// Price is an alias for Close.
func (b Bar) Price() float64 {
	return b.Close
}

// HasHLC reports whether high, low and close are all present.
func (b Bar) HasHLC() bool {
	return !math.IsNaN(b.High) && !math.IsNaN(b.Low) && !math.IsNaN(b.Close)
}

// Body is the absolute distance between open and close.
func (b Bar) Body() float64 {
	return math.Abs(b.Close - b.Open)
}

// Range is high minus low.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// UpperShadow is the distance from the top of the body to the high.
func (b Bar) UpperShadow() float64 {
	return b.High - math.Max(b.Open, b.Close)
}

// LowerShadow is the distance from the low to the bottom of the body.
func (b Bar) LowerShadow() float64 {
	return math.Min(b.Open, b.Close) - b.Low
}

// IsBullish reports close above open.
func (b Bar) IsBullish() bool {
	return b.Close > b.Open
}

// IsBearish reports close below open.
func (b Bar) IsBearish() bool {
	return b.Close < b.Open
}

// Series is an ascending, immutable sequence of bars for one asset and
// timeframe. Bar i is assumed to immediately precede bar i+1.
type Series struct {
	bars []Bar
}

// NewSeries copies bars into a new Series.
func NewSeries(bars []Bar) Series {
	copied := make([]Bar, len(bars))
	copy(copied, bars)

	return Series{bars: copied}
}

// Len returns the number of bars.
func (s Series) Len() int {
	return len(s.bars)
}

// IsEmpty reports whether the series has no bars.
func (s Series) IsEmpty() bool {
	return len(s.bars) == 0
}

// At returns the bar at index i.
func (s Series) At(i int) Bar {
	return s.bars[i]
}

// Last returns the most recent bar. It panics on an empty series.
func (s Series) Last() Bar {
	return s.bars[len(s.bars)-1]
}

// Bars returns a copy of the underlying bars.
func (s Series) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)

	return out
}

// Slice returns the sub-series [from, to).
func (s Series) Slice(from, to int) Series {
	return NewSeries(s.bars[from:to])
}

// Tail returns the last n bars, or the whole series when n exceeds its length.
func (s Series) Tail(n int) Series {
	if n >= len(s.bars) {
		return s
	}

	return s.Slice(len(s.bars)-n, len(s.bars))
}

// Closes returns the close prices in order.
func (s Series) Closes() []float64 {
	return s.extract(func(b Bar) float64 { return b.Close })
}

// Highs returns the high prices in order.
func (s Series) Highs() []float64 {
	return s.extract(func(b Bar) float64 { return b.High })
}

// Lows returns the low prices in order.
func (s Series) Lows() []float64 {
	return s.extract(func(b Bar) float64 { return b.Low })
}

// Volumes returns the volumes in order.
func (s Series) Volumes() []float64 {
	return s.extract(func(b Bar) float64 { return b.Volume })
}

func (s Series) extract(field func(Bar) float64) []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = field(b)
	}

	return out
}
