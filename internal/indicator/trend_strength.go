package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

const adxTrendThreshold = 25.0

// ADXResult holds the directional indexes and ADX.
// PlusDI, MinusDI and DX are aligned to each other; ADX starts period-1
// entries later.
type ADXResult struct {
	PlusDI           []float64 `json:"plusDI"`
	MinusDI          []float64 `json:"minusDI"`
	DX               []float64 `json:"dx"`
	ADX              []float64 `json:"adx"`
	Last             float64   `json:"last"`
	Trending         bool      `json:"trending"`
	SustainedPeriods int       `json:"sustainedPeriods"`
}

// TrendStrength is the canonical TrendStrengthEngine.
type TrendStrength struct{}

// NewTrendStrengthEngine creates a TrendStrengthEngine.
func NewTrendStrengthEngine() TrendStrengthEngine {
	return &TrendStrength{}
}

// ADX computes +DI, -DI and the Average Directional Index. It needs at
// least 2*period bars.
func (t *TrendStrength) ADX(series types.Series, period int) (ADXResult, error) {
	if err := validateSeries(series); err != nil {
		return ADXResult{}, err
	}

	if period < 1 {
		return ADXResult{}, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	required := 2 * period
	if series.Len() < required {
		return ADXResult{}, errors.NewInsufficientDataErrorf(required, series.Len(), string(types.IndicatorTypeADX),
			"insufficient data for ADX: required %d, got %d", required, series.Len())
	}

	highs, lows, closes := series.Highs(), series.Lows(), series.Closes()
	tr := trueRanges(highs, lows, closes)
	plusDM, minusDM := directionalMoves(highs, lows)

	smoothedTR := wilderSmooth(tr, period)
	smoothedPlus := wilderSmooth(plusDM, period)
	smoothedMinus := wilderSmooth(minusDM, period)

	plusDI := make([]float64, len(smoothedTR))
	minusDI := make([]float64, len(smoothedTR))
	dx := make([]float64, len(smoothedTR))

	for i := range smoothedTR {
		if smoothedTR[i] != 0 {
			plusDI[i] = 100 * smoothedPlus[i] / smoothedTR[i]
			minusDI[i] = 100 * smoothedMinus[i] / smoothedTR[i]
		}

		if sum := plusDI[i] + minusDI[i]; sum != 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
		}
	}

	adx := wilderSmooth(dx, period)
	last := adx[len(adx)-1]

	return ADXResult{
		PlusDI:           plusDI,
		MinusDI:          minusDI,
		DX:               dx,
		ADX:              adx,
		Last:             last,
		Trending:         last > adxTrendThreshold,
		SustainedPeriods: sustainedPeriods(adx, adxTrendThreshold, types.DirectionUp),
	}, nil
}

// directionalMoves keeps the larger of the up and down move only when it is
// positive and strictly exceeds the other.
func directionalMoves(highs, lows []float64) ([]float64, []float64) {
	plus := make([]float64, len(highs)-1)
	minus := make([]float64, len(highs)-1)

	for i := 1; i < len(highs); i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]

		if up > down && up > 0 {
			plus[i-1] = up
		}

		if down > up && down > 0 {
			minus[i-1] = down
		}
	}

	return plus, minus
}
