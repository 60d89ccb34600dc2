// Package indicator implements the technical analysis engines. Every engine
// is a pure function of its input series and is safe for concurrent use.
package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// MovingAverageEngine computes simple and exponential moving averages and
// classifies crossovers between two of them.
type MovingAverageEngine interface {
	// SMA returns len(series)-period+1 values, value i being the mean of closes [i, i+period).
	SMA(series types.Series, period int) ([]float64, error)
	// EMA returns one value per bar, seeded with the first close.
	EMA(series types.Series, period int) ([]float64, error)
	// DetectCrossover compares the last two shared indexes of both averages.
	DetectCrossover(shortMA, longMA []float64) (types.Crossover, error)
}

// MomentumEngine computes momentum oscillators.
type MomentumEngine interface {
	RSI(series types.Series, period int) ([]float64, error)
	MACD(series types.Series, shortPeriod, longPeriod, signalPeriod int) (MACDResult, error)
	Stochastic(series types.Series, period int) (StochasticResult, error)
	ROC(series types.Series, period int) (ROCResult, error)
	SustainedPeriods(values []float64, threshold float64, direction types.MovementDirection) int
}

// TrendStrengthEngine computes the directional movement system.
type TrendStrengthEngine interface {
	ADX(series types.Series, period int) (ADXResult, error)
}

// CloudTrendEngine computes the final values of a simplified Ichimoku cloud.
type CloudTrendEngine interface {
	Ichimoku(series types.Series) (IchimokuResult, error)
}

// PivotEngine computes floor trader pivots from the most recent bar.
type PivotEngine interface {
	Pivot(series types.Series) (PivotResult, error)
}

// VolumeEngine profiles volume against price.
type VolumeEngine interface {
	Analyze(volumes, prices []float64) (VolumeResult, error)
}

// VolatilityEngine computes range based volatility measures and bands.
type VolatilityEngine interface {
	ATR(series types.Series, period int) (ATRResult, error)
	Keltner(series types.Series, emaPeriod, atrPeriod int, multiplier float64) (KeltnerResult, error)
	BollingerBands(series types.Series, period int, k float64) (BollingerResult, error)
}

// PatternEngine recognises candlestick patterns.
type PatternEngine interface {
	// Detect returns every match, most recent position first.
	Detect(series types.Series) []types.Pattern
}

// validateSeries rejects empty series and series with a non-numeric close.
func validateSeries(series types.Series) error {
	if series.IsEmpty() {
		return errors.New(errors.ErrCodeInvalidSeries, "series must not be empty")
	}

	for i := 0; i < series.Len(); i++ {
		c := series.At(i).Close
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return errors.Newf(errors.ErrCodeInvalidSeries, "non-numeric close at index %d", i)
		}
	}

	return nil
}

// validatePeriod enforces 2 <= period <= length.
func validatePeriod(period, length int) error {
	if period < 2 || period > length {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be between 2 and %d, got %d", length, period)
	}

	return nil
}
