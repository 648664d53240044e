package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// ID is a record identifier. The backend sends integers; the client keeps the
// JSON text so ids round-trip unchanged.
type ID string

// UnmarshalJSON accepts numbers, strings and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	r := gjson.ParseBytes(b)
	switch r.Type {
	case gjson.Null:
		*id = ""
	case gjson.Number:
		*id = ID(r.Raw)
	case gjson.String:
		*id = ID(r.Str)
	default:
		return fmt.Errorf("invalid id: %s", string(b))
	}
	return nil
}

// MarshalJSON writes numeric ids as numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String returns the id text.
func (id ID) String() string { return string(id) }

// Decimal is a money or quantity value. DRF serializes decimals as strings.
type Decimal float64

// UnmarshalJSON accepts numbers and numeric strings.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	r := gjson.ParseBytes(b)
	switch r.Type {
	case gjson.Null:
		*d = 0
	case gjson.Number:
		*d = Decimal(r.Num)
	case gjson.String:
		if r.Str == "" {
			*d = 0
			return nil
		}
		f, err := strconv.ParseFloat(r.Str, 64)
		if err != nil {
			return fmt.Errorf("invalid decimal %q: %w", r.Str, err)
		}
		*d = Decimal(f)
	default:
		return fmt.Errorf("invalid decimal: %s", string(b))
	}
	return nil
}

// String formats the value with two decimals.
func (d Decimal) String() string {
	return strconv.FormatFloat(float64(d), 'f', 2, 64)
}

// MarshalJSON writes the value as a two-decimal string, as DRF expects.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
