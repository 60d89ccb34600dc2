package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

const (
	defaultProfileBins    = 10
	volumeStableThreshold = 0.05
)

// VolumeTrend classifies recent volume against earlier volume.
type VolumeTrend string

const (
	VolumeIncreasing VolumeTrend = "increasing"
	VolumeDecreasing VolumeTrend = "decreasing"
	VolumeStable     VolumeTrend = "stable"
)

// VolumeProfile describes where volume concentrates in price.
type VolumeProfile struct {
	DominantLevel float64 `json:"dominantLevel"`
	// Concentration is dominant level volume over total volume.
	Concentration float64 `json:"concentration"`
}

// VolumeResult is the output of the volume engine.
type VolumeResult struct {
	Trend         VolumeTrend `json:"trend"`
	TrendStrength float64     `json:"trendStrength"`
	// Significance is the last volume over the mean of all earlier volumes, capped at 1.
	Significance float64       `json:"significance"`
	Profile      VolumeProfile `json:"profile"`
}

// VolumeAnalyzer is the canonical VolumeEngine. ProfileBins sets how many
// equal width price levels the profile uses.
type VolumeAnalyzer struct {
	ProfileBins int
}

// NewVolumeEngine creates a VolumeEngine with 10 profile levels.
func NewVolumeEngine() VolumeEngine {
	return &VolumeAnalyzer{ProfileBins: defaultProfileBins}
}

// Analyze computes trend, significance and the price profile of volumes
// traded at prices. Both slices must be non-empty and of equal length.
func (v *VolumeAnalyzer) Analyze(volumes, prices []float64) (VolumeResult, error) {
	if len(volumes) == 0 || len(prices) == 0 {
		return VolumeResult{}, errors.New(errors.ErrCodeVolumeDataRequired, "Volume and price data required")
	}

	if len(volumes) != len(prices) {
		return VolumeResult{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"volume and price lengths differ: %d vs %d", len(volumes), len(prices))
	}

	if len(volumes) == 1 {
		return VolumeResult{
			Trend:         VolumeStable,
			TrendStrength: 0,
			Significance:  1,
			Profile:       VolumeProfile{DominantLevel: prices[0], Concentration: 1},
		}, nil
	}

	trend, strength := volumeTrend(volumes)

	return VolumeResult{
		Trend:         trend,
		TrendStrength: strength,
		Significance:  volumeSignificance(volumes),
		Profile:       v.profile(volumes, prices),
	}, nil
}

// volumeTrend compares the mean of the recent half with the earlier half.
func volumeTrend(volumes []float64) (VolumeTrend, float64) {
	half := len(volumes) / 2
	earlier := mean(volumes[:len(volumes)-half])
	recent := mean(volumes[len(volumes)-half:])

	var diff float64

	switch {
	case earlier != 0:
		diff = (recent - earlier) / earlier
	case recent > 0:
		diff = 1
	}

	strength := math.Min(math.Abs(diff), 1)

	switch {
	case strength < volumeStableThreshold:
		return VolumeStable, strength
	case diff > 0:
		return VolumeIncreasing, strength
	default:
		return VolumeDecreasing, strength
	}
}

// volumeSignificance excludes the most recent bar from the baseline. A zero
// baseline reports 1 when the last bar traded and 0 otherwise.
func volumeSignificance(volumes []float64) float64 {
	last := volumes[len(volumes)-1]
	baseline := mean(volumes[:len(volumes)-1])

	if baseline == 0 {
		if last > 0 {
			return 1
		}

		return 0
	}

	return math.Min(last/baseline, 1)
}

func (v *VolumeAnalyzer) profile(volumes, prices []float64) VolumeProfile {
	bins := v.ProfileBins
	if bins < 1 {
		bins = defaultProfileBins
	}

	lo, hi := prices[0], prices[0]
	total := 0.0

	for i, p := range prices {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
		total += volumes[i]
	}

	if hi == lo {
		concentration := 0.0
		if total > 0 {
			concentration = 1
		}

		return VolumeProfile{DominantLevel: lo, Concentration: concentration}
	}

	width := (hi - lo) / float64(bins)
	levels := make([]float64, bins)

	for i, p := range prices {
		idx := int((p - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}

		levels[idx] += volumes[i]
	}

	dominant := 0
	for i := range levels {
		if levels[i] > levels[dominant] {
			dominant = i
		}
	}

	concentration := 0.0
	if total > 0 {
		concentration = levels[dominant] / total
	}

	return VolumeProfile{
		DominantLevel: lo + (float64(dominant)+0.5)*width,
		Concentration: concentration,
	}
}
