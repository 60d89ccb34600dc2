package analysis

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
)

const (
	adxPeriod         = 14
	atrPeriod         = 14
	rocPeriod         = 10
	keltnerEMAPeriod  = 20
	keltnerATRPeriod  = 10
	keltnerMultiplier = 2.0
	bollingerPeriod   = 20
	bollingerK        = 2.0
)

// Band is the last value of a three line channel.
type Band struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// TrendReading is the last ADX reading.
type TrendReading struct {
	ADX              float64 `json:"adx"`
	PlusDI           float64 `json:"plusDI"`
	MinusDI          float64 `json:"minusDI"`
	Trending         bool    `json:"trending"`
	SustainedPeriods int     `json:"sustainedPeriods"`
}

// VolatilityReading is the last ATR reading.
type VolatilityReading struct {
	ATR     float64                   `json:"atr"`
	Average float64                   `json:"average"`
	Level   indicator.VolatilityLevel `json:"level"`
}

// RateOfChange is the last ROC reading.
type RateOfChange struct {
	Value     float64         `json:"value"`
	Condition types.Condition `json:"condition"`
	Strength  float64         `json:"strength"`
}

// IndicatorSnapshot is the last reading of every engine over one window.
// A reading is null when the window is too short for it.
type IndicatorSnapshot struct {
	AssetID    string                                    `json:"assetId"`
	Timeframe  marketdata.Timeframe                      `json:"timeframe"`
	Timestamp  time.Time                                 `json:"timestamp"`
	Bars       int                                       `json:"bars"`
	LastPrice  float64                                   `json:"lastPrice"`
	Trend      optional.Option[TrendReading]             `json:"trend"`
	Cloud      optional.Option[indicator.IchimokuResult] `json:"cloud"`
	Pivot      optional.Option[indicator.PivotResult]    `json:"pivot"`
	Volume     optional.Option[indicator.VolumeResult]   `json:"volume"`
	Volatility optional.Option[VolatilityReading]        `json:"volatility"`
	Keltner    optional.Option[Band]                     `json:"keltner"`
	Bollinger  optional.Option[Band]                     `json:"bollinger"`
	ROC        optional.Option[RateOfChange]             `json:"roc"`
}

// Snapshot fetches limit bars of id at timeframe and runs every engine on
// them. Engines that need more bars than the window holds are left empty;
// any other engine error fails the snapshot.
func (a *Analyzer) Snapshot(ctx context.Context, id string, timeframe marketdata.Timeframe, limit int) (IndicatorSnapshot, error) {
	series, err := a.fetch(ctx, id, "snapshot", Window{Timeframe: timeframe, Limit: limit})
	if err != nil {
		return IndicatorSnapshot{}, err
	}

	snapshot := IndicatorSnapshot{
		AssetID:   id,
		Timeframe: timeframe,
		Timestamp: a.now().UTC(),
		Bars:      series.Len(),
		LastPrice: series.Last().Close,
	}

	if snapshot.Trend, err = keep(a.trendReading(series)); err != nil {
		return IndicatorSnapshot{}, err
	}

	if snapshot.Cloud, err = keep(a.engines.CloudTrend.Ichimoku(series)); err != nil {
		return IndicatorSnapshot{}, err
	}

	if snapshot.Pivot, err = keep(a.engines.Pivot.Pivot(series)); err != nil {
		return IndicatorSnapshot{}, err
	}

	if snapshot.Volume, err = keep(a.engines.Volume.Analyze(series.Volumes(), series.Closes())); err != nil {
		return IndicatorSnapshot{}, err
	}

	if snapshot.Volatility, err = keep(a.volatilityReading(series)); err != nil {
		return IndicatorSnapshot{}, err
	}

	if snapshot.Keltner, err = keep(a.keltnerBand(series)); err != nil {
		return IndicatorSnapshot{}, err
	}

	if snapshot.Bollinger, err = keep(a.bollingerBand(series)); err != nil {
		return IndicatorSnapshot{}, err
	}

	if snapshot.ROC, err = keep(a.rateOfChange(series)); err != nil {
		return IndicatorSnapshot{}, err
	}

	return snapshot, nil
}

// keep turns a window too short for the engine into None and passes every
// other error through.
func keep[T any](value T, err error) (optional.Option[T], error) {
	if err == nil {
		return optional.Some(value), nil
	}

	if errors.IsInsufficientDataError(err) || errors.HasCode(err, errors.ErrCodeInvalidPeriod) {
		return optional.None[T](), nil
	}

	return optional.None[T](), err
}

func (a *Analyzer) trendReading(series types.Series) (TrendReading, error) {
	result, err := a.engines.TrendStrength.ADX(series, adxPeriod)
	if err != nil {
		return TrendReading{}, err
	}

	return TrendReading{
		ADX:              result.Last,
		PlusDI:           lastValue(result.PlusDI),
		MinusDI:          lastValue(result.MinusDI),
		Trending:         result.Trending,
		SustainedPeriods: result.SustainedPeriods,
	}, nil
}

func (a *Analyzer) volatilityReading(series types.Series) (VolatilityReading, error) {
	result, err := a.engines.Volatility.ATR(series, atrPeriod)
	if err != nil {
		return VolatilityReading{}, err
	}

	return VolatilityReading{ATR: result.Last, Average: result.Average, Level: result.Level}, nil
}

func (a *Analyzer) keltnerBand(series types.Series) (Band, error) {
	result, err := a.engines.Volatility.Keltner(series, keltnerEMAPeriod, keltnerATRPeriod, keltnerMultiplier)
	if err != nil {
		return Band{}, err
	}

	return Band{Upper: lastValue(result.Upper), Middle: lastValue(result.Middle), Lower: lastValue(result.Lower)}, nil
}

func (a *Analyzer) bollingerBand(series types.Series) (Band, error) {
	result, err := a.engines.Volatility.BollingerBands(series, bollingerPeriod, bollingerK)
	if err != nil {
		return Band{}, err
	}

	return Band{Upper: lastValue(result.Upper), Middle: lastValue(result.Middle), Lower: lastValue(result.Lower)}, nil
}

func (a *Analyzer) rateOfChange(series types.Series) (RateOfChange, error) {
	result, err := a.engines.Momentum.ROC(series, rocPeriod)
	if err != nil {
		return RateOfChange{}, err
	}

	return RateOfChange{Value: result.Value, Condition: result.Condition, Strength: result.Strength}, nil
}

func lastValue(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return values[len(values)-1]
}
