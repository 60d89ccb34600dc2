package indicator

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// MovingAverages is the canonical MovingAverageEngine.
type MovingAverages struct{}

// NewMovingAverageEngine creates a MovingAverageEngine.
func NewMovingAverageEngine() MovingAverageEngine {
	return &MovingAverages{}
}

// SMA computes the simple moving average of closes with a running sum.
func (m *MovingAverages) SMA(series types.Series, period int) ([]float64, error) {
	if err := validateSeries(series); err != nil {
		return nil, err
	}

	if err := validatePeriod(period, series.Len()); err != nil {
		return nil, err
	}

	return smaValues(series.Closes(), period), nil
}

// smaValues assumes 1 <= period <= len(values).
func smaValues(values []float64, period int) []float64 {
	out := make([]float64, len(values)-period+1)
	p := float64(period)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}

	out[0] = sum / p

	for i := period; i < len(values); i++ {
		sum += values[i] - values[i-period]
		out[i-period+1] = sum / p
	}

	return out
}
