package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

const rocExtremeThreshold = 10.0

// ROCResult is the rate of change against the close period bars back.
type ROCResult struct {
	// Values holds one ROC percentage per bar from index period onward.
	Values     []float64       `json:"values"`
	Value      float64         `json:"value"`
	Normalized float64         `json:"normalized"`
	Condition  types.Condition `json:"condition"`
	Strength   float64         `json:"strength"`
}

// ROC computes the percent change of close against period bars back.
// |ROC| >= 10 is overbought (positive) or oversold (negative).
func (m *Momentum) ROC(series types.Series, period int) (ROCResult, error) {
	if err := validateSeries(series); err != nil {
		return ROCResult{}, err
	}

	if period < 1 {
		return ROCResult{}, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if series.Len() <= period {
		return ROCResult{}, errors.NewInsufficientDataErrorf(period+1, series.Len(), string(types.IndicatorTypeROC),
			"insufficient data for ROC: required %d, got %d", period+1, series.Len())
	}

	closes := series.Closes()
	values := make([]float64, len(closes)-period)

	for i := period; i < len(closes); i++ {
		base := closes[i-period]
		if base == 0 {
			continue
		}

		values[i-period] = (closes[i] - base) / base * 100
	}

	roc := values[len(values)-1]

	condition := types.ConditionNeutral
	if math.Abs(roc) >= rocExtremeThreshold {
		condition = types.ConditionOversold
		if roc > 0 {
			condition = types.ConditionOverbought
		}
	}

	return ROCResult{
		Values:     values,
		Value:      roc,
		Normalized: clamp(roc/100, -1, 1),
		Condition:  condition,
		Strength:   math.Min(math.Abs(roc)/rocExtremeThreshold, 1),
	}, nil
}

// SustainedPeriods counts, from the last element backward, how many
// consecutive values are above (up) or below (down) threshold.
func (m *Momentum) SustainedPeriods(values []float64, threshold float64, direction types.MovementDirection) int {
	return sustainedPeriods(values, threshold, direction)
}

func sustainedPeriods(values []float64, threshold float64, direction types.MovementDirection) int {
	if direction != types.DirectionUp && direction != types.DirectionDown {
		return 0
	}

	count := 0

	for i := len(values) - 1; i >= 0; i-- {
		if direction == types.DirectionUp && !(values[i] > threshold) {
			break
		}

		if direction == types.DirectionDown && !(values[i] < threshold) {
			break
		}

		count++
	}

	return count
}
