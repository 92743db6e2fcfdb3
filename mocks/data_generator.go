package mocks

import (
	"encoding/json"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/iss-candles/internal/types"
	"github.com/rxtech-lab/iss-candles/pkg/marketdata/iss"
)

// CandleColumns is the column order ISS uses for the candles block.
var CandleColumns = []string{
	types.ColumnOpen,
	types.ColumnClose,
	types.ColumnHigh,
	types.ColumnLow,
	types.ColumnValue,
	types.ColumnVolume,
	types.ColumnBegin,
	types.ColumnEnd,
}

// DataGenerator generates realistic ISS candle tables for tests.
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

// GeneratorConfig configures how candles are generated.
type GeneratorConfig struct {
	// StartTime is the begin of the first candle
	StartTime time.Time
	// Interval is the duration of each candle
	Interval time.Duration
	// Count is the number of candles to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement per candle
	Volatility float64
	// VolumeBase is the average volume (lots) per candle
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:      time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
		Interval:       time.Minute,
		Count:          100,
		InitialPrice:   270.0,
		Volatility:     0.002,
		VolumeBase:     1000,
		VolumeVariance: 0.3,
	}
}

// Generate creates a candles table following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) iss.Table {
	table := iss.Table{
		Columns: append([]string(nil), CandleColumns...),
		Data:    make([][]any, config.Count),
	}

	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		closePrice := open * (1 + config.Volatility*z)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		low := math.Min(open, closePrice) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := math.Round(config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance))
		if volume < 1 {
			volume = 1
		}

		closePrice = roundToDecimals(closePrice, 2)

		table.Data[i] = []any{
			roundToDecimals(open, 2),
			closePrice,
			roundToDecimals(high, 2),
			roundToDecimals(low, 2),
			roundToDecimals(closePrice*volume, 1),
			volume,
			currentTime.Format(types.ISSTimeLayout),
			currentTime.Add(config.Interval - time.Second).Format(types.ISSTimeLayout),
		}

		currentPrice = closePrice
		currentTime = currentTime.Add(config.Interval)
	}

	return table
}

// CandlesResponse renders table as an ISS candles JSON response body.
func CandlesResponse(table iss.Table) ([]byte, error) {
	return json.Marshal(map[string]iss.Table{"candles": table})
}

// GenerateResponse is a convenience wrapper producing count candles starting at start.
func GenerateResponse(seed int64, start time.Time, count int) ([]byte, error) {
	config := DefaultConfig()
	config.StartTime = start
	config.Count = count

	return CandlesResponse(NewDataGenerator(seed).Generate(config))
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int32) float64 {
	return decimal.NewFromFloat(val).Round(decimals).InexactFloat64()
}
