package analysis

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/shopspring/decimal"
)

// percentChange compares the last close with the close lookback bars earlier,
// or with the first close when the series is shorter than that.
func percentChange(series types.Series, lookback int) float64 {
	if series.Len() < 2 {
		return 0
	}

	baseIndex := series.Len() - 1 - lookback
	if baseIndex < 0 {
		baseIndex = 0
	}

	base := series.At(baseIndex).Close
	if base == 0 {
		return 0
	}

	return (series.Last().Close - base) / base * 100
}

// formatChange renders a percentage as a signed string with two decimals,
// for example "+1.25%" or "-0.40%".
func formatChange(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		pct = 0
	}

	d := decimal.NewFromFloat(pct).Round(2)

	sign := ""
	if !d.IsNegative() {
		sign = "+"
	}

	return sign + d.StringFixed(2) + "%"
}

// volatility is the population standard deviation of the one bar percent
// returns over the last min(periods, len) bars.
func volatility(series types.Series, periods int) float64 {
	closes := series.Tail(periods).Closes()
	if len(closes) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(closes)-1)

	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}

		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1]*100)
	}

	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}

	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}

	return math.Sqrt(variance / float64(len(returns)))
}
