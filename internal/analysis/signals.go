package analysis

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

const (
	rsiPeriod        = 14
	macdShortPeriod  = 12
	macdLongPeriod   = 26
	macdSignalPeriod = 9
	stochasticPeriod = 14

	rsiOversold          = 30.0
	rsiOverbought        = 70.0
	stochasticOversold   = 20.0
	stochasticOverbought = 80.0

	shortTermPatternCount = 2

	emaShortPeriod    = 12
	emaLongPeriod     = 26
	trendLookback     = 5
	trendThresholdPct = 1.0
	longTermBandRatio = 0.05
	neutralOscillator = 50.0
)

func (a *Analyzer) shortTermSignals(series types.Series) types.ShortTermSignals {
	patterns := a.engines.Pattern.Detect(series)
	if len(patterns) > shortTermPatternCount {
		patterns = patterns[:shortTermPatternCount]
	}

	return types.ShortTermSignals{
		Patterns:   patterns,
		RSI:        a.rsiSignal(series),
		MACD:       a.macdSignal(series),
		Stochastic: a.stochasticSignal(series),
	}
}

func (a *Analyzer) rsiSignal(series types.Series) types.RSISignal {
	values, err := a.engines.Momentum.RSI(series, rsiPeriod)
	if err != nil || len(values) == 0 {
		return types.RSISignal{Value: neutralOscillator, Condition: types.ConditionNeutral}
	}

	value := values[len(values)-1]

	return types.RSISignal{
		Value:     value,
		Condition: classify(value, rsiOversold, rsiOverbought),
	}
}

// macdSignal reads the sign of the last histogram value. Strength is its
// magnitude against the largest histogram magnitude in the window.
func (a *Analyzer) macdSignal(series types.Series) types.MACDSignal {
	neutral := types.MACDSignal{Signal: types.SignalActionNeutral, Strength: 0}

	result, err := a.engines.Momentum.MACD(series, macdShortPeriod, macdLongPeriod, macdSignalPeriod)
	if err != nil || len(result.Histogram) == 0 {
		return neutral
	}

	_, _, last := result.Last()

	peak := 0.0
	for _, h := range result.Histogram {
		peak = math.Max(peak, math.Abs(h))
	}

	strength := 0.0
	if peak > 0 {
		strength = math.Min(math.Abs(last)/peak, 1)
	}

	switch {
	case last > 0:
		return types.MACDSignal{Signal: types.SignalActionBuy, Strength: strength}
	case last < 0:
		return types.MACDSignal{Signal: types.SignalActionSell, Strength: strength}
	default:
		return neutral
	}
}

func (a *Analyzer) stochasticSignal(series types.Series) types.StochasticSignal {
	neutral := types.StochasticSignal{K: neutralOscillator, D: neutralOscillator, Condition: types.ConditionNeutral}

	result, err := a.engines.Momentum.Stochastic(series, stochasticPeriod)
	if err != nil || len(result.K) == 0 {
		return neutral
	}

	k := result.K[len(result.K)-1]

	d := neutralOscillator
	if len(result.D) > 0 {
		d = result.D[len(result.D)-1]
	}

	return types.StochasticSignal{
		K:         k,
		D:         d,
		Condition: classify(k, stochasticOversold, stochasticOverbought),
	}
}

// mediumTermSignals prefers an EMA12/EMA26 cross and falls back to the
// percent change over the last five bars when the averages did not cross.
func (a *Analyzer) mediumTermSignals(series types.Series) types.MediumTermSignals {
	signals := types.MediumTermSignals{
		Trend:     types.TrendNeutral,
		Strength:  trendStrength(series),
		Crossover: types.Crossover{Type: optional.None[types.CrossoverType]()},
	}

	if crossover, ok := a.emaCrossover(series); ok {
		signals.Crossover = crossover

		switch {
		case crossover.IsBullish():
			signals.Trend = types.TrendBullish

			return signals
		case crossover.IsBearish():
			signals.Trend = types.TrendBearish

			return signals
		}
	}

	change := percentChange(series, trendLookback)

	switch {
	case change > trendThresholdPct:
		signals.Trend = types.TrendBullish
	case change < -trendThresholdPct:
		signals.Trend = types.TrendBearish
	}

	return signals
}

func (a *Analyzer) emaCrossover(series types.Series) (types.Crossover, bool) {
	shortEMA, err := a.engines.MovingAverage.EMA(series, emaShortPeriod)
	if err != nil {
		return types.Crossover{}, false
	}

	longEMA, err := a.engines.MovingAverage.EMA(series, emaLongPeriod)
	if err != nil {
		return types.Crossover{}, false
	}

	crossover, err := a.engines.MovingAverage.DetectCrossover(shortEMA, longEMA)
	if err != nil {
		return types.Crossover{}, false
	}

	return crossover, true
}

// trendStrength is the mean absolute bar over bar percent change, capped at 1.
func trendStrength(series types.Series) float64 {
	closes := series.Closes()
	if len(closes) < 2 {
		return 0
	}

	sum := 0.0
	count := 0

	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}

		sum += math.Abs((closes[i] - closes[i-1]) / closes[i-1] * 100)
		count++
	}

	if count == 0 {
		return 0
	}

	return math.Min(sum/float64(count), 1)
}

// longTermSignals is a fixed band around the last price.
func longTermSignals(lastPrice float64) types.LongTermSignals {
	return types.LongTermSignals{
		Support:    lastPrice * (1 - longTermBandRatio),
		Resistance: lastPrice * (1 + longTermBandRatio),
	}
}

func classify(value, oversold, overbought float64) types.Condition {
	switch {
	case value < oversold:
		return types.ConditionOversold
	case value > overbought:
		return types.ConditionOverbought
	default:
		return types.ConditionNeutral
	}
}
