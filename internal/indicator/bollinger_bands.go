package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// BollingerResult holds bands aligned like SMA output.
type BollingerResult struct {
	Upper  []float64 `json:"upper"`
	Middle []float64 `json:"middle"`
	Lower  []float64 `json:"lower"`
}

// BollingerBands builds bands of k population standard deviations around
// the SMA of closes.
func (v *Volatility) BollingerBands(series types.Series, period int, k float64) (BollingerResult, error) {
	if k <= 0 {
		return BollingerResult{}, errors.Newf(errors.ErrCodeInvalidMultiplier, "k must be positive, got %f", k)
	}

	middle, err := v.movingAverages.SMA(series, period)
	if err != nil {
		return BollingerResult{}, err
	}

	closes := series.Closes()
	result := BollingerResult{
		Upper:  make([]float64, len(middle)),
		Middle: middle,
		Lower:  make([]float64, len(middle)),
	}

	for i, m := range middle {
		variance := 0.0
		for _, c := range closes[i : i+period] {
			variance += (c - m) * (c - m)
		}

		sd := math.Sqrt(variance / float64(period))
		result.Upper[i] = m + k*sd
		result.Lower[i] = m - k*sd
	}

	return result, nil
}
