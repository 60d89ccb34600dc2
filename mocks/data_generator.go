package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// DataGenerator generates realistic bars for testing and benchmarking.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how bars are generated.
type GeneratorConfig struct {
	// StartTime is the timestamp of the first bar
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per bar)
	Volatility float64
	// Trend is the total drift over the series (-0.1 to 0.1 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:       5 * time.Minute,
		Count:          100,
		InitialPrice:   100.0,
		Volatility:     0.004,
		Trend:          0.0,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// Generate creates bars following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Bar {
	bars := make([]types.Bar, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a normal draw
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := config.Volatility * z
		drift := config.Trend / float64(config.Count)

		close := open * (1 + priceChange + drift)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bars[i] = types.Bar{
			Timestamp: currentTime,
			Open:      roundToDecimals(open, 4),
			High:      roundToDecimals(high, 4),
			Low:       roundToDecimals(low, 4),
			Close:     roundToDecimals(close, 4),
			Volume:    roundToDecimals(volume, 2),
		}

		currentPrice = close
		currentTime = currentTime.Add(config.Interval)
	}

	return bars
}

// GenerateSeries wraps Generate in a Series.
func (g *DataGenerator) GenerateSeries(config GeneratorConfig) types.Series {
	return types.NewSeries(g.Generate(config))
}

// LinearBars returns count bars whose close rises by step each bar, with a
// constant half-unit wick on both sides. A negative step produces a falling series.
func LinearBars(start, step float64, count int, interval time.Duration) []types.Bar {
	bars := make([]types.Bar, count)
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range bars {
		c := start + step*float64(i)
		bars[i] = types.Bar{
			Timestamp: t.Add(time.Duration(i) * interval),
			Open:      c - step/2,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    1000,
		}
	}

	return bars
}

// Generate1K is a convenience function returning 1,000 bars with default
// settings for benchmarking.
func Generate1K() types.Series {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 1000

	return gen.GenerateSeries(config)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
