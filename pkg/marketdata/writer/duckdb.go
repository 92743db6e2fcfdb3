package writer

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/iss-candles/internal/types"
)

// DuckDBWriter implements the Writer interface for DuckDB.
// Rows are staged in an in-memory table and exported to Parquet on Finalize.
// Rows from an existing Parquet file at outputPath are loaded first, so repeated
// runs append the same way the CSV writer does.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
}

// NewDuckDBWriter creates a new DuckDBWriter exporting to outputPath.
func NewDuckDBWriter(outputPath string) MarketDataWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
	}
}

// Initialize opens an in-memory database, creates the candles table, loads any
// existing export, begins a transaction and prepares the insert statement.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS candles (
			id TEXT,
			ticker TEXT,
			"begin" TIMESTAMP,
			"end" TIMESTAMP,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			value DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()
		w.db = nil

		return fmt.Errorf("failed to create table: %w", err)
	}

	if _, statErr := os.Stat(w.outputPath); statErr == nil {
		_, err = w.db.Exec(fmt.Sprintf(`INSERT INTO candles SELECT * FROM read_parquet('%s')`, quotePath(w.outputPath)))
		if err != nil {
			w.db.Close()
			w.db = nil

			return fmt.Errorf("failed to load existing parquet %s: %w", w.outputPath, err)
		}
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()
		w.db = nil

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO candles (id, ticker, "begin", "end", open, high, low, close, value, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()
		w.tx = nil
		w.db = nil

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	return nil
}

// Write converts record to a candle and inserts it within the transaction.
func (w *DuckDBWriter) Write(record *types.Record) error {
	if w.stmt == nil {
		return fmt.Errorf("writer not initialized or statement is nil")
	}

	c, err := types.ToCandle(record)
	if err != nil {
		return fmt.Errorf("failed to convert record: %w", err)
	}

	_, err = w.stmt.Exec(
		uuid.New().String(),
		c.Ticker,
		c.Begin,
		c.End,
		c.Open,
		c.High,
		c.Low,
		c.Close,
		c.Value,
		c.Volume,
	)
	if err != nil {
		return fmt.Errorf("failed to insert data: %w", err)
	}

	return nil
}

// Finalize commits the transaction and exports the data to a Parquet file.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized or transaction is nil")
	}

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()
		w.tx = nil

		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil

	_, err = w.db.Exec(fmt.Sprintf(`COPY candles TO '%s' (FORMAT PARQUET)`, quotePath(w.outputPath)))
	if err != nil {
		return "", fmt.Errorf("failed to export to Parquet: %w", err)
	}

	log.Printf("Successfully exported data to %s", w.outputPath)

	return w.outputPath, nil
}

// Close releases the statement, rolls back an unfinished transaction and closes the database.
func (w *DuckDBWriter) Close() error {
	var closeErrors []string

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close statement: %v", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			log.Printf("Warning: failed to rollback transaction during close: %v", err)
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close db connection: %v", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		return fmt.Errorf("errors occurred during close:\n- %s", strings.Join(closeErrors, "\n- "))
	}

	return nil
}

func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}

func quotePath(p string) string {
	return strings.ReplaceAll(p, "'", "''")
}

var _ MarketDataWriter = (*DuckDBWriter)(nil)
