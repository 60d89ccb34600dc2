package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

const (
	dojiBodyRatio          = 0.1
	hammerShadowMultiple   = 2.0
	hammerUpperRangeRatio  = 0.1
	starLowerBodyRatio     = 0.3
	starBodyRangeRatio     = 0.3
	marubozuBodyRangeRatio = 0.8
	marubozuShadowRatio    = 0.1
	haramiBodyRatio        = 0.6
	starMiddleBodyRatio    = 0.3
	soldierOpenTolerance   = 0.01
	soldierShadowRatio     = 0.1
)

type singleRule func(cur, prev types.Bar, hasPrev bool) (types.PatternType, float64, bool)

type pairRule func(prev, cur types.Bar) (types.PatternType, float64, bool)

type tripleRule func(first, second, third types.Bar) (types.PatternType, float64, bool)

// Patterns is the canonical PatternEngine.
type Patterns struct {
	single []singleRule
	pair   []pairRule
	triple []tripleRule
}

// NewPatternEngine creates a PatternEngine with the full rule catalogue.
func NewPatternEngine() PatternEngine {
	return &Patterns{
		single: []singleRule{matchDoji, matchHammer, matchShootingStar, matchMarubozu},
		pair:   []pairRule{matchEngulfing, matchHarami, matchDarkCloudCover, matchPiercingLine},
		triple: []tripleRule{matchMorningStar, matchEveningStar, matchThreeWhiteSoldiers, matchThreeBlackCrows},
	}
}

// Detect scans from the most recent bar backward and evaluates every
// applicable one, two and three candle rule at each position.
func (p *Patterns) Detect(series types.Series) []types.Pattern {
	patterns := []types.Pattern{}

	for i := series.Len() - 1; i >= 0; i-- {
		cur := series.At(i)

		var prev types.Bar
		if i >= 1 {
			prev = series.At(i - 1)
		}

		for _, rule := range p.single {
			if kind, strength, ok := rule(cur, prev, i >= 1); ok {
				patterns = append(patterns, newPattern(kind, i, strength, cur))
			}
		}

		if i >= 1 {
			for _, rule := range p.pair {
				if kind, strength, ok := rule(prev, cur); ok {
					patterns = append(patterns, newPattern(kind, i, strength, prev, cur))
				}
			}
		}

		if i >= 2 {
			first := series.At(i - 2)
			for _, rule := range p.triple {
				if kind, strength, ok := rule(first, prev, cur); ok {
					patterns = append(patterns, newPattern(kind, i, strength, first, prev, cur))
				}
			}
		}
	}

	return patterns
}

func newPattern(kind types.PatternType, position int, strength float64, bars ...types.Bar) types.Pattern {
	return types.Pattern{
		Type:     kind,
		Position: position,
		Strength: clamp01(strength),
		Bars:     bars,
	}
}

func matchDoji(cur, _ types.Bar, _ bool) (types.PatternType, float64, bool) {
	r := cur.Range()
	if r <= 0 {
		return "", 0, false
	}

	ratio := cur.Body() / r
	if ratio >= dojiBodyRatio {
		return "", 0, false
	}

	return types.PatternDoji, 1 - ratio, true
}

func matchHammer(cur, prev types.Bar, hasPrev bool) (types.PatternType, float64, bool) {
	r := cur.Range()
	if !hasPrev || r <= 0 || !prev.IsBearish() {
		return "", 0, false
	}

	lower := cur.LowerShadow()
	if lower < hammerShadowMultiple*cur.Body() || cur.UpperShadow() > hammerUpperRangeRatio*r {
		return "", 0, false
	}

	return types.PatternHammer, lower / r, true
}

func matchShootingStar(cur, prev types.Bar, hasPrev bool) (types.PatternType, float64, bool) {
	r := cur.Range()
	if !hasPrev || r <= 0 || !prev.IsBullish() || !cur.IsBearish() {
		return "", 0, false
	}

	body := cur.Body()
	upper := cur.UpperShadow()

	if upper < hammerShadowMultiple*body || cur.LowerShadow() > starLowerBodyRatio*body || body >= starBodyRangeRatio*r {
		return "", 0, false
	}

	return types.PatternShootingStar, upper / r, true
}

func matchMarubozu(cur, _ types.Bar, _ bool) (types.PatternType, float64, bool) {
	r := cur.Range()
	body := cur.Body()

	if r <= 0 || body < marubozuBodyRangeRatio*r {
		return "", 0, false
	}

	if cur.UpperShadow() > marubozuShadowRatio*body || cur.LowerShadow() > marubozuShadowRatio*body {
		return "", 0, false
	}

	if cur.IsBullish() {
		return types.PatternBullishMarubozu, body / r, true
	}

	return types.PatternBearishMarubozu, body / r, true
}

func matchEngulfing(prev, cur types.Bar) (types.PatternType, float64, bool) {
	prevBody, curBody := prev.Body(), cur.Body()
	if curBody <= prevBody {
		return "", 0, false
	}

	strength := 1 - prevBody/curBody

	switch {
	case prev.IsBearish() && cur.IsBullish() && cur.Open <= prev.Close && cur.Close >= prev.Open:
		return types.PatternBullishEngulfing, strength, true
	case prev.IsBullish() && cur.IsBearish() && cur.Open >= prev.Close && cur.Close <= prev.Open:
		return types.PatternBearishEngulfing, strength, true
	default:
		return "", 0, false
	}
}

func matchHarami(prev, cur types.Bar) (types.PatternType, float64, bool) {
	prevBody, curBody := prev.Body(), cur.Body()
	if prevBody == 0 || curBody > haramiBodyRatio*prevBody {
		return "", 0, false
	}

	strength := 1 - curBody/prevBody

	switch {
	case prev.IsBearish() && cur.IsBullish() && cur.Open >= prev.Close && cur.Close <= prev.Open:
		return types.PatternBullishHarami, strength, true
	case prev.IsBullish() && cur.IsBearish() && cur.Open <= prev.Close && cur.Close >= prev.Open:
		return types.PatternBearishHarami, strength, true
	default:
		return "", 0, false
	}
}

func matchDarkCloudCover(prev, cur types.Bar) (types.PatternType, float64, bool) {
	if !prev.IsBullish() || !cur.IsBearish() || cur.Open <= prev.High {
		return "", 0, false
	}

	mid := (prev.Open + prev.Close) / 2
	if cur.Close >= mid || cur.Close > prev.Open {
		return "", 0, false
	}

	return types.PatternDarkCloudCover, (prev.Close - cur.Close) / prev.Body(), true
}

func matchPiercingLine(prev, cur types.Bar) (types.PatternType, float64, bool) {
	if !prev.IsBearish() || !cur.IsBullish() || cur.Open >= prev.Low {
		return "", 0, false
	}

	mid := (prev.Open + prev.Close) / 2
	if cur.Close <= mid || cur.Close < prev.Open {
		return "", 0, false
	}

	return types.PatternPiercingLine, (cur.Close - prev.Close) / prev.Body(), true
}

func matchMorningStar(first, second, third types.Bar) (types.PatternType, float64, bool) {
	if !first.IsBearish() || !third.IsBullish() {
		return "", 0, false
	}

	firstBody := first.Body()
	mid := (first.Open + first.Close) / 2

	if second.Body() >= starMiddleBodyRatio*firstBody || third.Close <= mid {
		return "", 0, false
	}

	return types.PatternMorningStar, (third.Close - first.Close) / firstBody, true
}

func matchEveningStar(first, second, third types.Bar) (types.PatternType, float64, bool) {
	if !first.IsBullish() || !third.IsBearish() {
		return "", 0, false
	}

	firstBody := first.Body()
	mid := (first.Open + first.Close) / 2

	if second.Body() >= starMiddleBodyRatio*firstBody || third.Close >= mid {
		return "", 0, false
	}

	return types.PatternEveningStar, (first.Close - third.Close) / firstBody, true
}

func matchThreeWhiteSoldiers(first, second, third types.Bar) (types.PatternType, float64, bool) {
	bars := [3]types.Bar{first, second, third}
	for _, b := range bars {
		if !b.IsBullish() {
			return "", 0, false
		}
	}

	if !(second.Close > first.Close && third.Close > second.Close) {
		return "", 0, false
	}

	return soldiersOrCrows(bars, types.PatternThreeWhiteSoldiers)
}

func matchThreeBlackCrows(first, second, third types.Bar) (types.PatternType, float64, bool) {
	bars := [3]types.Bar{first, second, third}
	for _, b := range bars {
		if !b.IsBearish() {
			return "", 0, false
		}
	}

	if !(second.Close < first.Close && third.Close < second.Close) {
		return "", 0, false
	}

	return soldiersOrCrows(bars, types.PatternThreeBlackCrows)
}

// soldiersOrCrows checks open proximity and short shadows; the strength is
// the mean body to range ratio of the three bars.
func soldiersOrCrows(bars [3]types.Bar, kind types.PatternType) (types.PatternType, float64, bool) {
	for i := 1; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		if math.Abs(bars[i].Open-prevClose) > soldierOpenTolerance*math.Abs(prevClose) {
			return "", 0, false
		}
	}

	strength := 0.0

	for _, b := range bars {
		body := b.Body()
		if b.UpperShadow() > soldierShadowRatio*body || b.LowerShadow() > soldierShadowRatio*body {
			return "", 0, false
		}

		strength += body / b.Range()
	}

	return kind, strength / 3, true
}
