package indicator

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// MACDResult holds the three MACD lines, each one value per bar.
type MACDResult struct {
	MACD      []float64 `json:"macd"`
	Signal    []float64 `json:"signal"`
	Histogram []float64 `json:"histogram"`
}

// Last returns the most recent MACD, signal and histogram values.
func (r MACDResult) Last() (macd, signal, histogram float64) {
	n := len(r.MACD)
	if n == 0 {
		return 0, 0, 0
	}

	return r.MACD[n-1], r.Signal[n-1], r.Histogram[n-1]
}

// MACD computes EMA(short) - EMA(long), its signal EMA and the histogram.
func (m *Momentum) MACD(series types.Series, shortPeriod, longPeriod, signalPeriod int) (MACDResult, error) {
	if shortPeriod >= longPeriod {
		return MACDResult{}, errors.Newf(errors.ErrCodeInvalidPeriod,
			"short period (%d) must be smaller than long period (%d)", shortPeriod, longPeriod)
	}

	if signalPeriod < 2 {
		return MACDResult{}, errors.Newf(errors.ErrCodeInvalidPeriod, "signal period must be at least 2, got %d", signalPeriod)
	}

	if err := validateSeries(series); err != nil {
		return MACDResult{}, err
	}

	if series.Len() < longPeriod {
		return MACDResult{}, errors.NewInsufficientDataErrorf(longPeriod, series.Len(), string(types.IndicatorTypeMACD),
			"insufficient data for MACD: required %d, got %d", longPeriod, series.Len())
	}

	shortEMA, err := m.movingAverages.EMA(series, shortPeriod)
	if err != nil {
		return MACDResult{}, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate short EMA", err)
	}

	longEMA, err := m.movingAverages.EMA(series, longPeriod)
	if err != nil {
		return MACDResult{}, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate long EMA", err)
	}

	macd := make([]float64, series.Len())
	for i := range macd {
		macd[i] = shortEMA[i] - longEMA[i]
	}

	signal := emaValues(macd, signalPeriod)

	histogram := make([]float64, len(macd))
	for i := range macd {
		histogram[i] = macd[i] - signal[i]
	}

	return MACDResult{MACD: macd, Signal: signal, Histogram: histogram}, nil
}
