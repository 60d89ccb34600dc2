package types

// PatternType enumerates the recognised candlestick shapes.
type PatternType string

const (
	PatternDoji               PatternType = "DOJI"
	PatternHammer             PatternType = "HAMMER"
	PatternShootingStar       PatternType = "SHOOTING_STAR"
	PatternBullishMarubozu    PatternType = "BULLISH_MARUBOZU"
	PatternBearishMarubozu    PatternType = "BEARISH_MARUBOZU"
	PatternBullishEngulfing   PatternType = "BULLISH_ENGULFING"
	PatternBearishEngulfing   PatternType = "BEARISH_ENGULFING"
	PatternBullishHarami      PatternType = "BULLISH_HARAMI"
	PatternBearishHarami      PatternType = "BEARISH_HARAMI"
	PatternDarkCloudCover     PatternType = "DARK_CLOUD_COVER"
	PatternPiercingLine       PatternType = "PIERCING_LINE"
	PatternMorningStar        PatternType = "MORNING_STAR"
	PatternEveningStar        PatternType = "EVENING_STAR"
	PatternThreeWhiteSoldiers PatternType = "THREE_WHITE_SOLDIERS"
	PatternThreeBlackCrows    PatternType = "THREE_BLACK_CROWS"
)

// Bullish reports whether the pattern is conventionally read as bullish.
func (p PatternType) Bullish() bool {
	switch p {
	case PatternHammer, PatternBullishMarubozu, PatternBullishEngulfing, PatternBullishHarami,
		PatternPiercingLine, PatternMorningStar, PatternThreeWhiteSoldiers:
		return true
	default:
		return false
	}
}

// Pattern is a recognised candlestick shape ending at Position.
type Pattern struct {
	Type     PatternType `json:"type"`
	Position int         `json:"position"`
	// Strength is in [0, 1].
	Strength float64 `json:"strength"`
	// Bars holds the 1 to 3 contributing bars, oldest first.
	Bars []Bar `json:"bars"`
}
