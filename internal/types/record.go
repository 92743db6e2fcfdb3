package types

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/moznion/go-optional"
)

// Record is a single flattened row of an ISS table block.
// Fields keep the order in which they were first set; identity is by name.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord creates an empty record with room for n fields.
func NewRecord(n int) *Record {
	return &Record{
		keys:   make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

// Set assigns value to field name. A new field is appended after the existing ones,
// an existing field is overwritten in place.
func (r *Record) Set(name string, value any) {
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}

	r.values[name] = value
}

// Get returns the value of field name, or None if the record has no such field.
func (r *Record) Get(name string) optional.Option[any] {
	v, ok := r.values[name]
	if !ok {
		return optional.None[any]()
	}

	return optional.Some(v)
}

// Has reports whether the record carries field name.
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]

	return ok
}

// Keys returns the field names in order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)

	return keys
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// String returns the CSV cell representation of field name.
// Missing fields and JSON nulls render as an empty string.
func (r *Record) String(name string) string {
	v, ok := r.values[name]
	if !ok {
		return ""
	}

	return FormatValue(v)
}

// MarshalJSON encodes the record as a JSON object with fields in order.
func (r *Record) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}

	for i, k := range r.keys {
		if i > 0 {
			buf = append(buf, ',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field %s: %w", k, err)
		}

		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}

	return append(buf, '}'), nil
}

// FormatValue renders a decoded JSON value the way it should appear in a CSV cell.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
