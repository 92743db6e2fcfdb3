package iss

import (
	"bytes"

	"github.com/rxtech-lab/iss-candles/internal/types"
	"github.com/rxtech-lab/iss-candles/pkg/errors"
)

// Table is the columns/data shape every ISS block uses.
type Table struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// Flatten converts block name of doc into records, one per data row,
// mapping columns[i] to row[i]. Row order is preserved.
// A missing or malformed block returns ErrCodeMarketDataSchemaMismatch.
func Flatten(doc Document, name string) ([]*types.Record, error) {
	raw, ok := doc[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeMarketDataSchemaMismatch, "unexpected schema: block %q not found", name)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.Newf(errors.ErrCodeMarketDataSchemaMismatch, "unexpected schema: block %q is not an object", name)
	}

	var shape struct {
		Columns *[]string `json:"columns"`
		Data    *[][]any  `json:"data"`
	}

	if err := doc.Block(name, &shape); err != nil {
		return nil, err
	}

	if shape.Columns == nil || shape.Data == nil {
		return nil, errors.Newf(errors.ErrCodeMarketDataSchemaMismatch, "unexpected schema: block %q needs columns and data", name)
	}

	return (&Table{Columns: *shape.Columns, Data: *shape.Data}).Records(name)
}

// Records maps each data row of t to a record.
func (t *Table) Records(name string) ([]*types.Record, error) {
	records := make([]*types.Record, 0, len(t.Data))

	for i, row := range t.Data {
		if len(row) != len(t.Columns) {
			return nil, errors.Newf(errors.ErrCodeMarketDataSchemaMismatch,
				"unexpected schema: block %q row %d has %d values for %d columns", name, i, len(row), len(t.Columns))
		}

		r := types.NewRecord(len(t.Columns) + 1)
		for j, col := range t.Columns {
			r.Set(col, row[j])
		}

		records = append(records, r)
	}

	return records, nil
}
