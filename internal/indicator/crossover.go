package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// DetectCrossover classifies the cross between two moving averages.
//
// Both arrays are read at the same absolute indexes n-1 and n-2, where n is
// the shorter length. Arrays with different offsets into the bar series are
// therefore compared position by position, not by timestamp.
func (m *MovingAverages) DetectCrossover(shortMA, longMA []float64) (types.Crossover, error) {
	if len(shortMA) < 2 || len(longMA) < 2 {
		return types.Crossover{Type: optional.None[types.CrossoverType]()}, errors.NewInsufficientDataErrorf(
			2, min(len(shortMA), len(longMA)), string(types.IndicatorTypeCrossover),
			"crossover requires at least 2 values in each average, got %d and %d", len(shortMA), len(longMA))
	}

	n := min(len(shortMA), len(longMA))
	last, prev := n-1, n-2

	result := types.Crossover{
		Type:          optional.None[types.CrossoverType](),
		ShortPrevious: shortMA[prev],
		ShortLast:     shortMA[last],
		LongPrevious:  longMA[prev],
		LongLast:      longMA[last],
	}

	switch {
	case shortMA[prev] <= longMA[prev] && shortMA[last] > longMA[last]:
		result.Type = optional.Some(types.CrossoverBullish)
	case shortMA[prev] >= longMA[prev] && shortMA[last] < longMA[last]:
		result.Type = optional.Some(types.CrossoverBearish)
	}

	return result, nil
}
