package writer

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/iss-candles/internal/types"
)

// DefaultCSVPath is the file candles are appended to when no path is configured.
const DefaultCSVPath = "moex_data2.csv"

// CSVWriter buffers every row in memory and appends them to a CSV file in a
// single operation on Finalize.
type CSVWriter struct {
	outputPath  string
	rows        []*types.Record
	initialized bool
	finalized   bool
}

// NewCSVWriter creates a new CSVWriter appending to outputPath.
func NewCSVWriter(outputPath string) MarketDataWriter {
	return &CSVWriter{
		outputPath: outputPath,
	}
}

func (w *CSVWriter) Initialize() error {
	dir := filepath.Dir(w.outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w.rows = nil
	w.initialized = true
	w.finalized = false

	return nil
}

func (w *CSVWriter) Write(record *types.Record) error {
	if !w.initialized {
		return fmt.Errorf("writer not initialized")
	}

	if w.finalized {
		return fmt.Errorf("writer already finalized")
	}

	w.rows = append(w.rows, record)

	return nil
}

func (w *CSVWriter) Finalize() (string, error) {
	if !w.initialized {
		return "", fmt.Errorf("writer not initialized")
	}

	if w.finalized {
		return "", fmt.Errorf("writer already finalized")
	}

	if err := SaveToCSV(w.rows, w.outputPath); err != nil {
		return "", err
	}

	w.finalized = true
	log.Printf("Appended %d rows to %s", len(w.rows), w.outputPath)

	return w.outputPath, nil
}

func (w *CSVWriter) Close() error {
	w.rows = nil
	w.initialized = false

	return nil
}

func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}

// Header returns the union of field names over rows, in first-seen order.
func Header(rows []*types.Record) []string {
	seen := make(map[string]struct{})

	var header []string

	for _, r := range rows {
		for _, k := range r.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}

			seen[k] = struct{}{}
			header = append(header, k)
		}
	}

	return header
}

// SaveToCSV appends rows to filename. The header is written only when the file
// does not exist yet; an existing header is neither rewritten nor checked.
// With no rows and no file, nothing is created.
func SaveToCSV(rows []*types.Record, filename string) (err error) {
	_, statErr := os.Stat(filename)
	exists := statErr == nil

	if statErr != nil && !os.IsNotExist(statErr) {
		return fmt.Errorf("failed to stat %s: %w", filename, statErr)
	}

	if len(rows) == 0 && !exists {
		return nil
	}

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filename, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", filename, cerr)
		}
	}()

	header := Header(rows)
	csvWriter := csv.NewWriter(f)

	if !exists {
		if err := csvWriter.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	record := make([]string, len(header))

	for _, r := range rows {
		for i, col := range header {
			record[i] = r.String(col)
		}

		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	csvWriter.Flush()

	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}

var _ MarketDataWriter = (*CSVWriter)(nil)
