package indicator

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// closeSeries builds bars whose open, high, low and close all equal the given closes.
func closeSeries(closes ...float64) types.Series {
	bars := make([]types.Bar, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, c := range closes {
		bars[i] = types.Bar{Timestamp: start.Add(time.Duration(i) * time.Minute), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}

	return types.NewSeries(bars)
}

func ohlc(open, high, low, closePrice float64) types.Bar {
	return types.Bar{Open: open, High: high, Low: low, Close: closePrice}
}

func nan() float64 {
	return math.NaN()
}
