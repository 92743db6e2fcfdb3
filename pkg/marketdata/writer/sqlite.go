package writer

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rxtech-lab/iss-candles/internal/types"
)

const sqliteBatchSize = 500

// CandleModel is a row of the candles table of the SQLite writer.
// Rows are never deduplicated; repeated runs append.
type CandleModel struct {
	ID     uint      `gorm:"primaryKey"`
	Ticker string    `gorm:"size:32;not null;index:candle_ticker_begin,priority:1"`
	Begin  time.Time `gorm:"column:begin;not null;index:candle_ticker_begin,priority:2"`
	End    time.Time `gorm:"column:end;not null"`
	Open   float64   `gorm:"not null"`
	High   float64   `gorm:"not null"`
	Low    float64   `gorm:"not null"`
	Close  float64   `gorm:"not null"`
	Value  float64   `gorm:"not null"`
	Volume float64   `gorm:"not null;default:0"`
}

func (CandleModel) TableName() string {
	return "candles"
}

func toModel(c types.Candle) CandleModel {
	return CandleModel{
		Ticker: c.Ticker,
		Begin:  c.Begin,
		End:    c.End,
		Open:   c.Open,
		High:   c.High,
		Low:    c.Low,
		Close:  c.Close,
		Value:  c.Value,
		Volume: c.Volume,
	}
}

// SQLiteWriter appends candles to a SQLite database through gorm.
// Rows are buffered and inserted in batches on Finalize.
type SQLiteWriter struct {
	outputPath string
	db         *gorm.DB
	candles    []CandleModel
}

// NewSQLiteWriter creates a new SQLiteWriter for the database at outputPath.
func NewSQLiteWriter(outputPath string) MarketDataWriter {
	return &SQLiteWriter{
		outputPath: outputPath,
	}
}

// Initialize opens the database and migrates the candles table.
func (w *SQLiteWriter) Initialize() error {
	db, err := gorm.Open(sqlite.Open(w.outputPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.AutoMigrate(&CandleModel{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}

		return fmt.Errorf("failed to migrate candles table: %w", err)
	}

	w.db = db
	w.candles = nil

	return nil
}

func (w *SQLiteWriter) Write(record *types.Record) error {
	if w.db == nil {
		return fmt.Errorf("writer not initialized")
	}

	c, err := types.ToCandle(record)
	if err != nil {
		return fmt.Errorf("failed to convert record: %w", err)
	}

	w.candles = append(w.candles, toModel(c))

	return nil
}

// Finalize inserts the buffered candles in a single transaction.
func (w *SQLiteWriter) Finalize() (string, error) {
	if w.db == nil {
		return "", fmt.Errorf("writer not initialized")
	}

	if len(w.candles) > 0 {
		err := w.db.Transaction(func(tx *gorm.DB) error {
			return tx.CreateInBatches(&w.candles, sqliteBatchSize).Error
		})
		if err != nil {
			return "", fmt.Errorf("failed to insert candles: %w", err)
		}
	}

	log.Printf("Appended %d rows to %s", len(w.candles), w.outputPath)
	w.candles = nil

	return w.outputPath, nil
}

func (w *SQLiteWriter) Close() error {
	if w.db == nil {
		return nil
	}

	sqlDB, err := w.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get db connection: %w", err)
	}

	w.db = nil
	w.candles = nil

	return sqlDB.Close()
}

func (w *SQLiteWriter) GetOutputPath() string {
	return w.outputPath
}

var _ MarketDataWriter = (*SQLiteWriter)(nil)
