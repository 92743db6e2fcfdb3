package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Candle column names as returned by the ISS candles block.
const (
	ColumnOpen   = "open"
	ColumnClose  = "close"
	ColumnHigh   = "high"
	ColumnLow    = "low"
	ColumnValue  = "value"
	ColumnVolume = "volume"
	ColumnBegin  = "begin"
	ColumnEnd    = "end"
	ColumnTicker = "ticker"
)

// ISSTimeLayout is the timestamp layout used by ISS in both requests and responses.
const ISSTimeLayout = "2006-01-02 15:04:05"

// Candle is the typed view of a candle record.
type Candle struct {
	Ticker string
	Begin  time.Time
	End    time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Value  float64
	Volume float64
}

// ToCandle converts a flattened candle record into a Candle.
// Timestamps are interpreted in the exchange time zone.
func ToCandle(r *Record) (Candle, error) {
	var (
		c   Candle
		err error
	)

	c.Ticker = r.String(ColumnTicker)

	numeric := []struct {
		name string
		dst  *float64
	}{
		{ColumnOpen, &c.Open},
		{ColumnHigh, &c.High},
		{ColumnLow, &c.Low},
		{ColumnClose, &c.Close},
		{ColumnValue, &c.Value},
		{ColumnVolume, &c.Volume},
	}

	for _, f := range numeric {
		if *f.dst, err = numberField(r, f.name); err != nil {
			return Candle{}, err
		}
	}

	if c.Begin, err = timeField(r, ColumnBegin); err != nil {
		return Candle{}, err
	}

	if c.End, err = timeField(r, ColumnEnd); err != nil {
		return Candle{}, err
	}

	return c, nil
}

func numberField(r *Record, name string) (float64, error) {
	v, err := r.Get(name).Take()
	if err != nil {
		return 0, fmt.Errorf("missing column %q", name)
	}

	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", name, err)
		}

		return f, nil
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", name, err)
		}

		return f, nil
	default:
		return 0, fmt.Errorf("column %q has unexpected type %T", name, v)
	}
}

func timeField(r *Record, name string) (time.Time, error) {
	v, err := r.Get(name).Take()
	if err != nil {
		return time.Time{}, fmt.Errorf("missing column %q", name)
	}

	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("column %q has unexpected type %T", name, v)
	}

	t, err := time.ParseInLocation(ISSTimeLayout, s, ExchangeLocation)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %q: %w", name, err)
	}

	return t, nil
}
