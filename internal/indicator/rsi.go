package indicator

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// Momentum is the canonical MomentumEngine.
type Momentum struct {
	movingAverages *MovingAverages
}

// NewMomentumEngine creates a MomentumEngine.
func NewMomentumEngine() MomentumEngine {
	return &Momentum{movingAverages: &MovingAverages{}}
}

// RSI computes the Relative Strength Index with Wilder smoothing.
// The first value uses the simple mean of the first period deltas; the
// result has len(series)-period values and is empty when the series holds
// fewer than period+1 bars.
func (m *Momentum) RSI(series types.Series, period int) ([]float64, error) {
	if period < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if series.Len() < period+1 {
		return []float64{}, nil
	}

	if err := validateSeries(series); err != nil {
		return nil, err
	}

	closes := series.Closes()
	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)

	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	avgGains := wilderSmooth(gains, period)
	avgLosses := wilderSmooth(losses, period)

	out := make([]float64, len(avgGains))
	for i := range avgGains {
		out[i] = rsiValue(avgGains[i], avgLosses[i])
	}

	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
