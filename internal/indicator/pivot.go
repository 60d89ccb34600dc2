package indicator

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

const pivotEpsilon = 1e-5

// Breakout classifies the last close against R1 and S1.
type Breakout string

const (
	BreakoutAboveR1 Breakout = "above_r1"
	BreakoutBelowS1 Breakout = "below_s1"
	BreakoutBetween Breakout = "between"
)

// PivotResult holds classic floor trader levels.
type PivotResult struct {
	Pivot float64 `json:"pivot"`
	R1    float64 `json:"r1"`
	S1    float64 `json:"s1"`
	R2    float64 `json:"r2"`
	S2    float64 `json:"s2"`
	// R1Distance is (R1 - close) / close * 100.
	R1Distance float64  `json:"r1Distance"`
	Breakout   Breakout `json:"breakout"`
}

// Pivots is the canonical PivotEngine.
type Pivots struct{}

// NewPivotEngine creates a PivotEngine.
func NewPivotEngine() PivotEngine {
	return &Pivots{}
}

// Pivot derives levels from the high, low and close of the most recent bar.
func (p *Pivots) Pivot(series types.Series) (PivotResult, error) {
	if series.IsEmpty() {
		return PivotResult{}, errors.New(errors.ErrCodeInvalidSeries, "series must not be empty")
	}

	last := series.Last()
	if !last.HasHLC() {
		return PivotResult{}, errors.New(errors.ErrCodeMissingField, "last bar must have high, low and close")
	}

	h, l, c := last.High, last.Low, last.Close
	pp := (h + l + c) / 3
	r1 := 2*pp - l
	s1 := 2*pp - h

	breakout := BreakoutBetween
	if c >= r1-pivotEpsilon {
		breakout = BreakoutAboveR1
	} else if c <= s1+pivotEpsilon {
		breakout = BreakoutBelowS1
	}

	distance := 0.0
	if c != 0 {
		distance = (r1 - c) / c * 100
	}

	return PivotResult{
		Pivot:      pp,
		R1:         r1,
		S1:         s1,
		R2:         pp + (h - l),
		S2:         pp - (h - l),
		R1Distance: distance,
		Breakout:   breakout,
	}, nil
}
