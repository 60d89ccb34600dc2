package types

type IndicatorType string

const (
	IndicatorTypeSMA            IndicatorType = "sma"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeCrossover      IndicatorType = "crossover"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeStochastic     IndicatorType = "stochastic_oscillator"
	IndicatorTypeROC            IndicatorType = "roc"
	IndicatorTypeADX            IndicatorType = "adx"
	IndicatorTypeIchimoku       IndicatorType = "ichimoku"
	IndicatorTypePivot          IndicatorType = "pivot"
	IndicatorTypeVolume         IndicatorType = "volume"
	IndicatorTypeATR            IndicatorType = "atr"
	IndicatorTypeKeltner        IndicatorType = "keltner"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypePattern        IndicatorType = "pattern"
)
