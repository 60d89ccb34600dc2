package types

import "github.com/moznion/go-optional"

// Condition classifies an oscillator reading.
type Condition string

const (
	ConditionOversold   Condition = "oversold"
	ConditionOverbought Condition = "overbought"
	ConditionNeutral    Condition = "neutral"
)

// SignalAction is a discrete trade bias.
type SignalAction string

const (
	SignalActionStrongBuy  SignalAction = "strong_buy"
	SignalActionBuy        SignalAction = "buy"
	SignalActionNeutral    SignalAction = "neutral"
	SignalActionSell       SignalAction = "sell"
	SignalActionStrongSell SignalAction = "strong_sell"
)

// TrendDirection is the direction of a trend reading.
type TrendDirection string

const (
	TrendBullish TrendDirection = "bullish"
	TrendBearish TrendDirection = "bearish"
	TrendNeutral TrendDirection = "neutral"
)

// MovementDirection selects which side of a threshold counts as sustained.
type MovementDirection string

const (
	DirectionUp   MovementDirection = "up"
	DirectionDown MovementDirection = "down"
)

// CrossoverType is the kind of moving average cross.
type CrossoverType string

const (
	CrossoverBullish CrossoverType = "bullish"
	CrossoverBearish CrossoverType = "bearish"
)

// Crossover is the result of comparing the last two points of two moving
// averages. Type is None when the averages did not cross.
type Crossover struct {
	Type          optional.Option[CrossoverType] `json:"type"`
	ShortPrevious float64                        `json:"shortPrevious"`
	ShortLast     float64                        `json:"shortLast"`
	LongPrevious  float64                        `json:"longPrevious"`
	LongLast      float64                        `json:"longLast"`
}

// IsBullish reports a bullish cross.
func (c Crossover) IsBullish() bool {
	return c.Type.IsSome() && c.Type.Unwrap() == CrossoverBullish
}

// IsBearish reports a bearish cross.
func (c Crossover) IsBearish() bool {
	return c.Type.IsSome() && c.Type.Unwrap() == CrossoverBearish
}
