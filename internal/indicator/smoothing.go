package indicator

import "math"

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// emaValues seeds with values[0] and applies k = 2/(period+1).
func emaValues(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	k := 2.0 / float64(period+1)
	out[0] = values[0]

	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}

	return out
}

// wilderSmooth seeds with the simple mean of the first period values and then
// applies s = (s*(period-1)+x)/period. The result has len(values)-period+1
// entries, or none when values is shorter than period.
func wilderSmooth(values []float64, period int) []float64 {
	if period < 1 || len(values) < period {
		return nil
	}

	out := make([]float64, len(values)-period+1)
	s := mean(values[:period])
	out[0] = s

	p := float64(period)
	for i := period; i < len(values); i++ {
		s = (s*(p-1) + values[i]) / p
		out[i-period+1] = s
	}

	return out
}

// trueRanges returns one value per consecutive bar pair.
func trueRanges(highs, lows, closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}

	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prevClose := closes[i-1]
		out[i-1] = math.Max(
			highs[i]-lows[i],
			math.Max(math.Abs(highs[i]-prevClose), math.Abs(lows[i]-prevClose)),
		)
	}

	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return clamp(v, 0, 1)
}

func highestLowest(highs, lows []float64) (float64, float64) {
	hh := math.Inf(-1)
	ll := math.Inf(1)

	for i := range highs {
		hh = math.Max(hh, highs[i])
		ll = math.Min(ll, lows[i])
	}

	return hh, ll
}
