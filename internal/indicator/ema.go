package indicator

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// EMA computes the exponential moving average of closes. The output has one
// value per bar; EMA[0] equals the first close and k = 2/(period+1).
func (m *MovingAverages) EMA(series types.Series, period int) ([]float64, error) {
	if err := validateSeries(series); err != nil {
		return nil, err
	}

	if err := validatePeriod(period, series.Len()); err != nil {
		return nil, err
	}

	return emaValues(series.Closes(), period), nil
}
