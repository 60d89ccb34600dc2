package indicator

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

const stochasticSmoothing = 3

// StochasticResult holds %K (one value per full window) and %D, the 3 point
// average of %K. D is empty when K has fewer than 3 points.
type StochasticResult struct {
	K []float64 `json:"k"`
	D []float64 `json:"d"`
}

// Stochastic computes the stochastic oscillator over trailing windows of
// period bars. A flat window reports 50.
func (m *Momentum) Stochastic(series types.Series, period int) (StochasticResult, error) {
	if period < 1 {
		return StochasticResult{}, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	empty := StochasticResult{K: []float64{}, D: []float64{}}
	if series.Len() < period {
		return empty, nil
	}

	if err := validateSeries(series); err != nil {
		return StochasticResult{}, err
	}

	highs, lows, closes := series.Highs(), series.Lows(), series.Closes()

	k := make([]float64, 0, len(closes)-period+1)
	for i := period - 1; i < len(closes); i++ {
		hh, ll := highestLowest(highs[i-period+1:i+1], lows[i-period+1:i+1])
		if hh == ll {
			k = append(k, 50)

			continue
		}

		k = append(k, (closes[i]-ll)/(hh-ll)*100)
	}

	d := []float64{}
	if len(k) >= stochasticSmoothing {
		d = smaValues(k, stochasticSmoothing)
	}

	return StochasticResult{K: k, D: d}, nil
}
