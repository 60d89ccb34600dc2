package indicator

import (
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// Engines bundles one implementation of every engine. Any field may be
// replaced by another implementation of the same interface.
type Engines struct {
	MovingAverage MovingAverageEngine
	Momentum      MomentumEngine
	TrendStrength TrendStrengthEngine
	CloudTrend    CloudTrendEngine
	Pivot         PivotEngine
	Volume        VolumeEngine
	Volatility    VolatilityEngine
	Pattern       PatternEngine
}

// NewEngines returns the canonical implementation of every engine.
func NewEngines() Engines {
	return Engines{
		MovingAverage: NewMovingAverageEngine(),
		Momentum:      NewMomentumEngine(),
		TrendStrength: NewTrendStrengthEngine(),
		CloudTrend:    NewCloudTrendEngine(),
		Pivot:         NewPivotEngine(),
		Volume:        NewVolumeEngine(),
		Volatility:    NewVolatilityEngine(),
		Pattern:       NewPatternEngine(),
	}
}

// Validate reports the first missing engine.
func (e Engines) Validate() error {
	checks := []struct {
		name    string
		missing bool
	}{
		{"moving average", e.MovingAverage == nil},
		{"momentum", e.Momentum == nil},
		{"trend strength", e.TrendStrength == nil},
		{"cloud trend", e.CloudTrend == nil},
		{"pivot", e.Pivot == nil},
		{"volume", e.Volume == nil},
		{"volatility", e.Volatility == nil},
		{"pattern", e.Pattern == nil},
	}

	for _, c := range checks {
		if c.missing {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "%s engine is not configured", c.name)
		}
	}

	return nil
}
