package indicator

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// VolatilityLevel classifies the last ATR against the mean ATR.
type VolatilityLevel string

const (
	VolatilityHigh   VolatilityLevel = "high"
	VolatilityNormal VolatilityLevel = "normal"
	VolatilityLow    VolatilityLevel = "low"
)

// ATRResult holds the Average True Range. ATR[i] and NormalizedATR[i]
// belong to bar i+1.
type ATRResult struct {
	TrueRange     []float64       `json:"trueRange"`
	ATR           []float64       `json:"atr"`
	NormalizedATR []float64       `json:"normalizedAtr"`
	Last          float64         `json:"last"`
	Average       float64         `json:"average"`
	Level         VolatilityLevel `json:"level"`
}

// Volatility is the canonical VolatilityEngine.
type Volatility struct {
	movingAverages *MovingAverages
}

// NewVolatilityEngine creates a VolatilityEngine.
func NewVolatilityEngine() VolatilityEngine {
	return &Volatility{movingAverages: &MovingAverages{}}
}

// ATR seeds with the first true range and applies
// ATR[i] = (ATR[i-1]*(period-1) + TR[i]) / period.
func (v *Volatility) ATR(series types.Series, period int) (ATRResult, error) {
	if err := validateSeries(series); err != nil {
		return ATRResult{}, err
	}

	if period < 1 {
		return ATRResult{}, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if series.Len() < 2 {
		return ATRResult{}, errors.NewInsufficientDataErrorf(2, series.Len(), string(types.IndicatorTypeATR),
			"insufficient data for ATR: required %d, got %d", 2, series.Len())
	}

	closes := series.Closes()
	tr := trueRanges(series.Highs(), series.Lows(), closes)

	atr := make([]float64, len(tr))
	normalized := make([]float64, len(tr))
	p := float64(period)

	for i := range tr {
		if i == 0 {
			atr[i] = tr[0]
		} else {
			atr[i] = (atr[i-1]*(p-1) + tr[i]) / p
		}

		if c := closes[i+1]; c != 0 {
			normalized[i] = atr[i] / c * 100
		}
	}

	last := atr[len(atr)-1]
	avg := mean(atr)

	level := VolatilityNormal
	if last > 1.5*avg {
		level = VolatilityHigh
	} else if last < 0.5*avg {
		level = VolatilityLow
	}

	return ATRResult{
		TrueRange:     tr,
		ATR:           atr,
		NormalizedATR: normalized,
		Last:          last,
		Average:       avg,
		Level:         level,
	}, nil
}

// KeltnerResult holds Keltner channel bands aligned to bars[1:].
type KeltnerResult struct {
	Upper  []float64 `json:"upper"`
	Middle []float64 `json:"middle"`
	Lower  []float64 `json:"lower"`
}

// Keltner builds bands of multiplier*ATR around EMA(close, emaPeriod).
func (v *Volatility) Keltner(series types.Series, emaPeriod, atrPeriod int, multiplier float64) (KeltnerResult, error) {
	if multiplier <= 0 {
		return KeltnerResult{}, errors.Newf(errors.ErrCodeInvalidMultiplier, "multiplier must be positive, got %f", multiplier)
	}

	middle, err := v.movingAverages.EMA(series, emaPeriod)
	if err != nil {
		return KeltnerResult{}, err
	}

	atr, err := v.ATR(series, atrPeriod)
	if err != nil {
		return KeltnerResult{}, err
	}

	result := KeltnerResult{
		Upper:  make([]float64, len(atr.ATR)),
		Middle: make([]float64, len(atr.ATR)),
		Lower:  make([]float64, len(atr.ATR)),
	}

	for i, a := range atr.ATR {
		m := middle[i+1]
		result.Middle[i] = m
		result.Upper[i] = m + multiplier*a
		result.Lower[i] = m - multiplier*a
	}

	return result, nil
}
