package indicator

import (
	"testing"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/mocks"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// MomentumTestSuite covers RSI, MACD, the stochastic oscillator and ROC.
type MomentumTestSuite struct {
	suite.Suite
	engine MomentumEngine
}

func TestMomentumSuite(t *testing.T) {
	suite.Run(t, new(MomentumTestSuite))
}

func (suite *MomentumTestSuite) SetupTest() {
	suite.engine = NewMomentumEngine()
}

func (suite *MomentumTestSuite) TestRSIBounded() {
	series := mocks.Generate1K()
	values, err := suite.engine.RSI(series, 14)
	suite.Require().NoError(err)
	suite.Len(values, series.Len()-14)

	for _, v := range values {
		suite.GreaterOrEqual(v, 0.0)
		suite.LessOrEqual(v, 100.0)
	}
}

func (suite *MomentumTestSuite) TestRSIDirection() {
	rising := types.NewSeries(mocks.LinearBars(100, 0.5, 40, time.Minute))
	values, err := suite.engine.RSI(rising, 14)
	suite.Require().NoError(err)
	suite.Greater(values[len(values)-1], 50.0)

	falling := types.NewSeries(mocks.LinearBars(100, -0.5, 40, time.Minute))
	values, err = suite.engine.RSI(falling, 14)
	suite.Require().NoError(err)
	suite.Less(values[len(values)-1], 50.0)
}

func (suite *MomentumTestSuite) TestRSIWilderSmoothing() {
	// deltas: +1 +1 -1 +2, period 2
	values, err := suite.engine.RSI(closeSeries(10, 11, 12, 11, 13), 2)
	suite.Require().NoError(err)
	suite.Require().Len(values, 3)

	// seed: gain 1, loss 0
	suite.Equal(100.0, values[0])
	// gain 0.5, loss 0.5
	suite.InDelta(50.0, values[1], 1e-9)
	// gain 1.25, loss 0.25
	suite.InDelta(100-100/(1+5.0), values[2], 1e-9)
}

func (suite *MomentumTestSuite) TestRSIInsufficientData() {
	values, err := suite.engine.RSI(closeSeries(1, 2, 3), 14)
	suite.NoError(err)
	suite.Empty(values)

	_, err = suite.engine.RSI(closeSeries(1, 2, 3), 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *MomentumTestSuite) TestRSIRejectsNonNumericClose() {
	_, err := suite.engine.RSI(closeSeries(1, 2, nan(), 4), 2)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSeries))

	// too short to compute, so nothing is validated
	values, err := suite.engine.RSI(closeSeries(nan()), 14)
	suite.NoError(err)
	suite.Empty(values)
}

func (suite *MomentumTestSuite) TestMACD() {
	series := mocks.Generate1K()
	result, err := suite.engine.MACD(series, 12, 26, 9)
	suite.Require().NoError(err)
	suite.Len(result.MACD, series.Len())
	suite.Len(result.Signal, series.Len())
	suite.Len(result.Histogram, series.Len())

	for i := range result.MACD {
		suite.InDelta(result.MACD[i]-result.Signal[i], result.Histogram[i], 1e-9)
	}

	macd, signal, histogram := result.Last()
	suite.Equal(result.MACD[series.Len()-1], macd)
	suite.Equal(result.Signal[series.Len()-1], signal)
	suite.Equal(result.Histogram[series.Len()-1], histogram)
}

func (suite *MomentumTestSuite) TestMACDErrors() {
	_, err := suite.engine.MACD(mocks.Generate1K(), 26, 12, 9)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	_, err = suite.engine.MACD(mocks.Generate1K(), 12, 26, 1)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	_, err = suite.engine.MACD(closeSeries(1, 2, 3), 12, 26, 9)
	suite.True(errors.IsInsufficientDataError(err))

	var empty MACDResult
	m, s, h := empty.Last()
	suite.Zero(m)
	suite.Zero(s)
	suite.Zero(h)
}

func (suite *MomentumTestSuite) TestStochastic() {
	bars := []types.Bar{
		ohlc(10, 12, 8, 11),
		ohlc(11, 14, 9, 13),
		ohlc(13, 15, 10, 14),
		ohlc(14, 16, 12, 12),
		ohlc(12, 13, 8, 9),
	}

	result, err := suite.engine.Stochastic(types.NewSeries(bars), 3)
	suite.Require().NoError(err)
	suite.Require().Len(result.K, 3)

	// window 1: hh 15, ll 8, close 14
	suite.InDelta(6.0/7*100, result.K[0], 1e-9)
	// window 2: hh 16, ll 9, close 12
	suite.InDelta(3.0/7*100, result.K[1], 1e-9)
	// window 3: hh 16, ll 8, close 9
	suite.InDelta(1.0/8*100, result.K[2], 1e-9)

	suite.Require().Len(result.D, 1)
	suite.InDelta((result.K[0]+result.K[1]+result.K[2])/3, result.D[0], 1e-9)
}

func (suite *MomentumTestSuite) TestStochasticEdgeCases() {
	flat, err := suite.engine.Stochastic(closeSeries(5, 5, 5, 5), 2)
	suite.Require().NoError(err)
	suite.Equal([]float64{50, 50, 50}, flat.K)

	short, err := suite.engine.Stochastic(closeSeries(1, 2), 14)
	suite.Require().NoError(err)
	suite.Empty(short.K)
	suite.Empty(short.D)

	// two K points are not enough for D
	noD, err := suite.engine.Stochastic(closeSeries(1, 2, 3), 2)
	suite.Require().NoError(err)
	suite.Len(noD.K, 2)
	suite.Empty(noD.D)

	_, err = suite.engine.Stochastic(closeSeries(1, 2, 3), 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *MomentumTestSuite) TestStochasticRejectsNonNumericClose() {
	_, err := suite.engine.Stochastic(closeSeries(1, 2, nan()), 2)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSeries))
}

func (suite *MomentumTestSuite) TestROCMatchesTalib() {
	series := mocks.Generate1K()
	result, err := suite.engine.ROC(series, 12)
	suite.Require().NoError(err)
	suite.Len(result.Values, series.Len()-12)

	reference := talib.Roc(series.Closes(), 12)
	for i, v := range result.Values {
		suite.InDelta(reference[i+12], v, 1e-6)
	}
}

func (suite *MomentumTestSuite) TestROCCondition() {
	up, err := suite.engine.ROC(closeSeries(100, 105, 112), 2)
	suite.Require().NoError(err)
	suite.InDelta(12.0, up.Value, 1e-9)
	suite.Equal(types.ConditionOverbought, up.Condition)
	suite.Equal(1.0, up.Strength)
	suite.InDelta(0.12, up.Normalized, 1e-9)

	down, err := suite.engine.ROC(closeSeries(100, 95, 85), 2)
	suite.Require().NoError(err)
	suite.Equal(types.ConditionOversold, down.Condition)

	calm, err := suite.engine.ROC(closeSeries(100, 101, 102), 2)
	suite.Require().NoError(err)
	suite.Equal(types.ConditionNeutral, calm.Condition)
	suite.InDelta(0.2, calm.Strength, 1e-9)

	_, err = suite.engine.ROC(closeSeries(100, 101), 2)
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *MomentumTestSuite) TestSustainedPeriods() {
	values := []float64{30, 10, 26, 27, 40}
	suite.Equal(3, suite.engine.SustainedPeriods(values, 25, types.DirectionUp))
	suite.Equal(0, suite.engine.SustainedPeriods(values, 25, types.DirectionDown))
	suite.Equal(5, suite.engine.SustainedPeriods(values, 50, types.DirectionDown))
	suite.Equal(0, suite.engine.SustainedPeriods(values, 25, "sideways"))
	suite.Equal(0, suite.engine.SustainedPeriods(nil, 25, types.DirectionUp))
}
