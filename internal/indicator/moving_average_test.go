package indicator

import (
	"math"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/mocks"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// MovingAverageTestSuite covers SMA, EMA and crossover detection.
type MovingAverageTestSuite struct {
	suite.Suite
	engine MovingAverageEngine
}

func TestMovingAverageSuite(t *testing.T) {
	suite.Run(t, new(MovingAverageTestSuite))
}

func (suite *MovingAverageTestSuite) SetupTest() {
	suite.engine = NewMovingAverageEngine()
}

func (suite *MovingAverageTestSuite) TestSMA() {
	values, err := suite.engine.SMA(closeSeries(1, 2, 3, 4, 5), 3)
	suite.Require().NoError(err)
	suite.Equal([]float64{2, 3, 4}, values)
}

func (suite *MovingAverageTestSuite) TestSMAMatchesTalib() {
	series := mocks.Generate1K()
	closes := series.Closes()

	for _, period := range []int{2, 14, 50, 200} {
		values, err := suite.engine.SMA(series, period)
		suite.Require().NoError(err)
		suite.Len(values, series.Len()-period+1)

		reference := talib.Sma(closes, period)
		for i, v := range values {
			suite.InDelta(reference[i+period-1], v, 1e-6, "period %d index %d", period, i)
		}
	}
}

func (suite *MovingAverageTestSuite) TestSMAPeriodEqualsLength() {
	values, err := suite.engine.SMA(closeSeries(2, 4, 6), 3)
	suite.Require().NoError(err)
	suite.Equal([]float64{4}, values)
}

func (suite *MovingAverageTestSuite) TestEMA() {
	values, err := suite.engine.EMA(closeSeries(10, 11, 12, 13), 3)
	suite.Require().NoError(err)
	suite.Require().Len(values, 4)

	// k = 0.5
	suite.Equal(10.0, values[0])
	suite.InDelta(10.5, values[1], 1e-12)
	suite.InDelta(11.25, values[2], 1e-12)
	suite.InDelta(12.125, values[3], 1e-12)
}

func (suite *MovingAverageTestSuite) TestEMASeededWithFirstClose() {
	series := mocks.Generate1K()
	values, err := suite.engine.EMA(series, 20)
	suite.Require().NoError(err)
	suite.Len(values, series.Len())
	suite.Equal(series.At(0).Close, values[0])
}

func (suite *MovingAverageTestSuite) TestInvalidInput() {
	_, err := suite.engine.SMA(types.NewSeries(nil), 3)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSeries))

	_, err = suite.engine.SMA(closeSeries(1, 2, 3), 1)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	_, err = suite.engine.EMA(closeSeries(1, 2, 3), 4)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	_, err = suite.engine.EMA(closeSeries(1, math.NaN(), 3), 2)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSeries))

	_, err = suite.engine.SMA(closeSeries(1, math.Inf(1), 3), 2)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSeries))
}

func (suite *MovingAverageTestSuite) TestDetectCrossover() {
	testCases := []struct {
		name     string
		short    []float64
		long     []float64
		expected types.CrossoverType
		none     bool
	}{
		{name: "bullish", short: []float64{10, 11, 12, 13}, long: []float64{12, 12, 12, 12}, expected: types.CrossoverBullish},
		{name: "bearish", short: []float64{12, 12, 12, 12}, long: []float64{10, 11, 12, 13}, expected: types.CrossoverBearish},
		{name: "diverging", short: []float64{20, 21, 22, 23}, long: []float64{10, 10, 10, 10}, none: true},
		{name: "touch then cross", short: []float64{12, 13}, long: []float64{12, 12}, expected: types.CrossoverBullish},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			crossover, err := suite.engine.DetectCrossover(tc.short, tc.long)
			suite.Require().NoError(err)

			if tc.none {
				suite.True(crossover.Type.IsNone())
				suite.False(crossover.IsBullish())
				suite.False(crossover.IsBearish())

				return
			}

			suite.Equal(tc.expected, crossover.Type.Unwrap())
		})
	}
}

func (suite *MovingAverageTestSuite) TestDetectCrossoverAlignsByIndex() {
	// the longer array is read at the shorter array's last two indexes
	crossover, err := suite.engine.DetectCrossover([]float64{1, 3}, []float64{2, 2, 9, 9})
	suite.Require().NoError(err)
	suite.True(crossover.IsBullish())
	suite.Equal(2.0, crossover.LongLast)
	suite.Equal(2.0, crossover.LongPrevious)
	suite.Equal(3.0, crossover.ShortLast)
}

func (suite *MovingAverageTestSuite) TestDetectCrossoverInsufficient() {
	crossover, err := suite.engine.DetectCrossover([]float64{1}, []float64{1, 2})
	suite.True(errors.IsInsufficientDataError(err))
	suite.True(crossover.Type.IsNone())
}
