package mocks

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rxtech-lab/iss-candles/internal/types"
	"github.com/rxtech-lab/iss-candles/pkg/marketdata/iss"
)

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 50

	table := gen.Generate(config)

	if len(table.Data) != 50 {
		t.Fatalf("expected 50 rows, got %d", len(table.Data))
	}

	for i, row := range table.Data {
		if len(row) != len(table.Columns) {
			t.Fatalf("row %d has %d values for %d columns", i, len(row), len(table.Columns))
		}

		high := row[2].(float64)
		low := row[3].(float64)
		if high < low {
			t.Errorf("high < low at row %d: %f < %f", i, high, low)
		}
	}

	first := table.Data[0]
	if first[6] != "2024-01-03 09:00:00" || first[7] != "2024-01-03 09:00:59" {
		t.Errorf("unexpected first candle window %v - %v", first[6], first[7])
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	a := NewDataGenerator(7).Generate(DefaultConfig())
	b := NewDataGenerator(7).Generate(DefaultConfig())

	for i := range a.Data {
		for j := range a.Data[i] {
			if a.Data[i][j] != b.Data[i][j] {
				t.Fatalf("row %d column %d differs: %v vs %v", i, j, a.Data[i][j], b.Data[i][j])
			}
		}
	}
}

func TestGenerateResponse_Flattens(t *testing.T) {
	body, err := GenerateResponse(1, time.Date(2024, 2, 1, 18, 1, 0, 0, time.UTC), 3)
	if err != nil {
		t.Fatalf("GenerateResponse: %v", err)
	}

	var doc iss.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	records, err := iss.Flatten(doc, "candles")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	if got := records[0].String(types.ColumnBegin); got != "2024-02-01 18:01:00" {
		t.Errorf("begin = %q", got)
	}

	c, err := types.ToCandle(records[2])
	if err != nil {
		t.Fatalf("ToCandle: %v", err)
	}

	if c.Ticker != "" || c.Volume <= 0 {
		t.Errorf("unexpected candle %+v", c)
	}
}
