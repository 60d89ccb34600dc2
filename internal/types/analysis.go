package types

import "time"

// RSISignal is the short term RSI reading.
type RSISignal struct {
	Value     float64   `json:"value"`
	Condition Condition `json:"condition"`
}

// MACDSignal is the short term MACD reading. Strength is in [0, 1].
type MACDSignal struct {
	Signal   SignalAction `json:"signal"`
	Strength float64      `json:"strength"`
}

// StochasticSignal is the short term stochastic reading.
type StochasticSignal struct {
	K         float64   `json:"k"`
	D         float64   `json:"d"`
	Condition Condition `json:"condition"`
}

// ShortTermSignals are derived from the 5 minute window.
type ShortTermSignals struct {
	Patterns   []Pattern        `json:"patterns"`
	RSI        RSISignal        `json:"rsi"`
	MACD       MACDSignal       `json:"macd"`
	Stochastic StochasticSignal `json:"stochastic"`
}

// MediumTermSignals are derived from the hourly window.
type MediumTermSignals struct {
	Trend     TrendDirection `json:"trend"`
	Strength  float64        `json:"strength"`
	Crossover Crossover      `json:"crossover"`
}

// LongTermSignals holds the support and resistance band.
type LongTermSignals struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

// KeySignals groups the per-horizon signals.
type KeySignals struct {
	ShortTerm  ShortTermSignals  `json:"shortTerm"`
	MediumTerm MediumTermSignals `json:"mediumTerm"`
	LongTerm   LongTermSignals   `json:"longTerm"`
}

// PriceChanges holds signed percentage strings such as "+1.25%".
type PriceChanges struct {
	ThirtyMinutes string `json:"30min"`
	OneHour       string `json:"1h"`
	FourHours     string `json:"4h"`
}

// AssetAnalysis is the assembled multi-timeframe analysis of one asset.
type AssetAnalysis struct {
	AssetID       string       `json:"assetId"`
	Timestamp     time.Time    `json:"timestamp"`
	LastPrice     float64      `json:"lastPrice"`
	Changes       PriceChanges `json:"changes"`
	KeySignals    KeySignals   `json:"keySignals"`
	Volatility    float64      `json:"volatility"`
	EngineVersion string       `json:"engineVersion"`
}

// AnalysisError records the failure of one asset in a batch.
type AnalysisError struct {
	AssetID   string    `json:"assetId"`
	Error     string    `json:"error"`
	Code      int       `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

// BatchMetadata summarises a batch run.
type BatchMetadata struct {
	BatchID          string    `json:"batchId"`
	StartedAt        time.Time `json:"startedAt"`
	TotalProcessed   int       `json:"totalProcessed"`
	SuccessCount     int       `json:"successCount"`
	FailureCount     int       `json:"failureCount"`
	ProcessingTimeMs int64     `json:"processingTimeMs"`
	EngineVersion    string    `json:"engineVersion"`
}

// BatchAnalysisResult partitions a batch into successes and failures.
type BatchAnalysisResult struct {
	Successful []AssetAnalysis `json:"successful"`
	Failed     []AnalysisError `json:"failed"`
	Metadata   BatchMetadata   `json:"metadata"`
}
