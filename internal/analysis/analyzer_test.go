package analysis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/internal/version"
	"github.com/rxtech-lab/argo-signals/mocks"
	argoerrors "github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// AnalyzerTestSuite covers single asset analysis against a mocked price source.
type AnalyzerTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	source *mocks.MockPriceSource
	now    time.Time
}

func TestAnalyzerSuite(t *testing.T) {
	suite.Run(t, new(AnalyzerTestSuite))
}

func (suite *AnalyzerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.source = mocks.NewMockPriceSource(suite.ctrl)
	suite.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (suite *AnalyzerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *AnalyzerTestSuite) newAnalyzer(opts ...Option) *Analyzer {
	opts = append([]Option{WithClock(func() time.Time { return suite.now })}, opts...)
	analyzer, err := NewAnalyzer(suite.source, opts...)
	suite.Require().NoError(err)

	return analyzer
}

// expectLinear serves every window of id as a linear series with the given step.
func (suite *AnalyzerTestSuite) expectLinear(id string, step float64) {
	suite.source.EXPECT().
		GetHistoricalPrices(gomock.Any(), id, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, tf marketdata.Timeframe, params marketdata.HistoryParams) ([]types.Bar, error) {
			return mocks.LinearBars(100, step, params.Limit, tf.Duration()), nil
		}).
		Times(3)
}

func (suite *AnalyzerTestSuite) TestNewAnalyzerRequiresSource() {
	_, err := NewAnalyzer(nil)
	suite.True(argoerrors.HasCode(err, argoerrors.ErrCodeInvalidConfiguration))
}

func (suite *AnalyzerTestSuite) TestNewAnalyzerRejectsBadOptions() {
	_, err := NewAnalyzer(suite.source, WithConcurrency(0))
	suite.True(argoerrors.HasCode(err, argoerrors.ErrCodeInvalidConfiguration))

	_, err = NewAnalyzer(suite.source, WithVolatilityPeriods(1))
	suite.True(argoerrors.HasCode(err, argoerrors.ErrCodeInvalidConfiguration))

	windows := DefaultWindows()
	windows.Medium.Timeframe = "90m"
	_, err = NewAnalyzer(suite.source, WithWindows(windows))
	suite.True(argoerrors.HasCode(err, argoerrors.ErrCodeInvalidTimeframe))

	engines := indicator.NewEngines()
	engines.Momentum = nil
	_, err = NewAnalyzer(suite.source, WithEngines(engines))
	suite.True(argoerrors.HasCode(err, argoerrors.ErrCodeInvalidConfiguration))
}

func (suite *AnalyzerTestSuite) TestAnalyzeRisingAsset() {
	suite.expectLinear("BTCUSDT", 1)

	result, err := suite.newAnalyzer().AnalyzeAsset(context.Background(), "BTCUSDT")
	suite.Require().NoError(err)

	suite.Equal("BTCUSDT", result.AssetID)
	suite.Equal(suite.now, result.Timestamp)
	suite.Equal(version.GetVersion(), result.EngineVersion)
	suite.Equal(199.0, result.LastPrice)

	// short: 199 vs 193, medium: 147 vs 146, long: 129 vs 128
	suite.Equal("+3.11%", result.Changes.ThirtyMinutes)
	suite.Equal("+0.68%", result.Changes.OneHour)
	suite.Equal("+0.78%", result.Changes.FourHours)

	short := result.KeySignals.ShortTerm
	suite.Equal(100.0, short.RSI.Value)
	suite.Equal(types.ConditionOverbought, short.RSI.Condition)
	suite.Equal(types.SignalActionBuy, short.MACD.Signal)
	suite.Greater(short.MACD.Strength, 0.0)
	suite.LessOrEqual(short.MACD.Strength, 1.0)
	suite.InDelta(13.5/14*100, short.Stochastic.K, 1e-9)
	suite.InDelta(13.5/14*100, short.Stochastic.D, 1e-9)
	suite.Equal(types.ConditionOverbought, short.Stochastic.Condition)
	suite.LessOrEqual(len(short.Patterns), 2)

	medium := result.KeySignals.MediumTerm
	suite.Equal(types.TrendBullish, medium.Trend)
	suite.True(medium.Crossover.Type.IsNone())
	suite.Greater(medium.Strength, 0.0)
	suite.LessOrEqual(medium.Strength, 1.0)

	suite.InDelta(189.05, result.KeySignals.LongTerm.Support, 1e-9)
	suite.InDelta(208.95, result.KeySignals.LongTerm.Resistance, 1e-9)

	suite.Greater(result.Volatility, 0.0)
}

func (suite *AnalyzerTestSuite) TestAnalyzeFallingAsset() {
	suite.expectLinear("ETHUSDT", -0.5)

	result, err := suite.newAnalyzer().AnalyzeAsset(context.Background(), "ETHUSDT")
	suite.Require().NoError(err)

	suite.Equal(50.5, result.LastPrice)
	suite.Equal("-5.61%", result.Changes.ThirtyMinutes)
	suite.Equal(0.0, result.KeySignals.ShortTerm.RSI.Value)
	suite.Equal(types.ConditionOversold, result.KeySignals.ShortTerm.RSI.Condition)
	suite.Equal(types.SignalActionSell, result.KeySignals.ShortTerm.MACD.Signal)
	suite.Equal(types.ConditionOversold, result.KeySignals.ShortTerm.Stochastic.Condition)
	suite.Equal(types.TrendBearish, result.KeySignals.MediumTerm.Trend)
}

func (suite *AnalyzerTestSuite) TestNeutralDefaultsOnShortWindows() {
	windows := Windows{
		Short:  Window{Timeframe: marketdata.TimeframeFiveMinutes, Limit: 10},
		Medium: Window{Timeframe: marketdata.TimeframeOneHour, Limit: 10},
		Long:   Window{Timeframe: marketdata.TimeframeOneHour, Limit: 10},
	}
	suite.expectLinear("FLAT", 0)

	result, err := suite.newAnalyzer(WithWindows(windows)).AnalyzeAsset(context.Background(), "FLAT")
	suite.Require().NoError(err)

	short := result.KeySignals.ShortTerm
	suite.Equal(types.RSISignal{Value: 50, Condition: types.ConditionNeutral}, short.RSI)
	suite.Equal(types.MACDSignal{Signal: types.SignalActionNeutral, Strength: 0}, short.MACD)
	suite.Equal(types.StochasticSignal{K: 50, D: 50, Condition: types.ConditionNeutral}, short.Stochastic)

	// flat bars with a wick are all doji, only the two most recent are kept
	suite.Require().Len(short.Patterns, 2)
	suite.Equal(types.PatternDoji, short.Patterns[0].Type)
	suite.Equal(9, short.Patterns[0].Position)
	suite.Equal(8, short.Patterns[1].Position)

	suite.Equal(types.TrendNeutral, result.KeySignals.MediumTerm.Trend)
	suite.Equal(0.0, result.KeySignals.MediumTerm.Strength)
	suite.Equal("+0.00%", result.Changes.ThirtyMinutes)
	suite.Equal(0.0, result.Volatility)
}

func (suite *AnalyzerTestSuite) TestFetchErrorKeepsSourceCode() {
	suite.source.EXPECT().
		GetHistoricalPrices(gomock.Any(), "MISSING", marketdata.TimeframeFiveMinutes, gomock.Any()).
		Return(nil, argoerrors.New(argoerrors.ErrCodeDataNotFound, "no klines"))

	_, err := suite.newAnalyzer().AnalyzeAsset(context.Background(), "MISSING")
	suite.Error(err)
	suite.True(argoerrors.HasCode(err, argoerrors.ErrCodeDataNotFound))
	suite.Contains(err.Error(), "short window")
}

func (suite *AnalyzerTestSuite) TestFetchErrorWithoutCode() {
	suite.source.EXPECT().
		GetHistoricalPrices(gomock.Any(), "BROKEN", gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("connection reset"))

	_, err := suite.newAnalyzer().AnalyzeAsset(context.Background(), "BROKEN")
	suite.True(argoerrors.HasCode(err, argoerrors.ErrCodeAnalysisFailed))
}

func (suite *AnalyzerTestSuite) TestEmptyWindowIsDataNotFound() {
	suite.source.EXPECT().
		GetHistoricalPrices(gomock.Any(), "EMPTY", gomock.Any(), gomock.Any()).
		Return([]types.Bar{}, nil)

	_, err := suite.newAnalyzer().AnalyzeAsset(context.Background(), "EMPTY")
	suite.True(argoerrors.HasCode(err, argoerrors.ErrCodeDataNotFound))
}

func (suite *AnalyzerTestSuite) TestWindowsAreRequested() {
	gomock.InOrder(
		suite.source.EXPECT().
			GetHistoricalPrices(gomock.Any(), "SOL", marketdata.TimeframeFiveMinutes, marketdata.HistoryParams{Limit: 100}).
			Return(mocks.LinearBars(10, 0.1, 100, 5*time.Minute), nil),
		suite.source.EXPECT().
			GetHistoricalPrices(gomock.Any(), "SOL", marketdata.TimeframeOneHour, marketdata.HistoryParams{Limit: 48}).
			Return(mocks.LinearBars(10, 0.1, 48, time.Hour), nil),
		suite.source.EXPECT().
			GetHistoricalPrices(gomock.Any(), "SOL", marketdata.TimeframeOneHour, marketdata.HistoryParams{Limit: 30}).
			Return(mocks.LinearBars(10, 0.1, 30, time.Hour), nil),
	)

	_, err := suite.newAnalyzer().AnalyzeAsset(context.Background(), "SOL")
	suite.NoError(err)
}

// closesSeries builds hourly bars with the given closes and a unit wick.
func closesSeries(closes ...float64) types.Series {
	bars := make([]types.Bar, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, c := range closes {
		bars[i] = types.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}

	return types.NewSeries(bars)
}

// flatThen returns n closes at 100 followed by tail.
func flatThen(n int, tail ...float64) []float64 {
	closes := make([]float64, 0, n+len(tail))
	for range n {
		closes = append(closes, 100)
	}

	return append(closes, tail...)
}

func (suite *AnalyzerTestSuite) TestMediumTermBullishCrossover() {
	series := closesSeries(flatThen(47, 110)...)

	suite.source.EXPECT().
		GetHistoricalPrices(gomock.Any(), "JUMP", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ marketdata.Timeframe, params marketdata.HistoryParams) ([]types.Bar, error) {
			bars := series.Bars()

			return bars[max(0, len(bars)-params.Limit):], nil
		}).
		Times(3)

	result, err := suite.newAnalyzer().AnalyzeAsset(context.Background(), "JUMP")
	suite.Require().NoError(err)

	medium := result.KeySignals.MediumTerm
	suite.Equal(types.TrendBullish, medium.Trend)
	suite.Require().True(medium.Crossover.IsBullish())
	suite.InDelta(100.0, medium.Crossover.ShortPrevious, 1e-9)
	suite.InDelta(100.0, medium.Crossover.LongPrevious, 1e-9)
	suite.InDelta(100+10*2.0/13, medium.Crossover.ShortLast, 1e-9)
	suite.InDelta(100+10*2.0/27, medium.Crossover.LongLast, 1e-9)
}

func (suite *AnalyzerTestSuite) TestMediumTermBearishCrossover() {
	signals := suite.newAnalyzer().mediumTermSignals(closesSeries(flatThen(47, 90)...))

	suite.Equal(types.TrendBearish, signals.Trend)
	suite.Require().True(signals.Crossover.IsBearish())
	suite.InDelta(100-10*2.0/13, signals.Crossover.ShortLast, 1e-9)
	suite.InDelta(100-10*2.0/27, signals.Crossover.LongLast, 1e-9)
}

func (suite *AnalyzerTestSuite) TestMediumTermCrossoverOverridesRecentChange() {
	// dip five bars back, rally, then a drop that crosses EMA12 below EMA26
	// while the close is still 6.25% above the dip
	series := closesSeries(flatThen(42, 80, 105, 105, 105, 105, 85)...)
	suite.Greater(percentChange(series, trendLookback), trendThresholdPct)

	signals := suite.newAnalyzer().mediumTermSignals(series)

	suite.Require().True(signals.Crossover.IsBearish())
	suite.Greater(signals.Crossover.ShortPrevious, signals.Crossover.LongPrevious)
	suite.Less(signals.Crossover.ShortLast, signals.Crossover.LongLast)
	suite.Equal(types.TrendBearish, signals.Trend)
}

func (suite *AnalyzerTestSuite) TestMediumTermFallsBackWithoutCrossover() {
	// the cross happened on an earlier bar, so only the 5 bar change decides
	signals := suite.newAnalyzer().mediumTermSignals(closesSeries(flatThen(47, 110, 110)...))

	suite.True(signals.Crossover.Type.IsNone())
	suite.Equal(types.TrendBullish, signals.Trend)
}
