package writer

import (
	"github.com/rxtech-lab/iss-candles/internal/types"
)

// MarketDataWriter defines the interface for writing candle rows to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write accepts a single candle row.
	Write(record *types.Record) error
	// Finalize completes the writing process (e.g., appends buffered rows, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}
