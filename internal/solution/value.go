package solution

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Value is one recorded sample. Valid is false for the "no value" marker
// that replaces NaN and infinities.
type Value struct {
	V     float64
	Valid bool
}

// Of wraps f, turning non-finite numbers into the no-value marker.
func Of(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{V: f, Valid: true}
}

// Float returns the sample, or NaN for the no-value marker.
func (v Value) Float() float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.V
}

// String formats the sample for CSV; the no-value marker is empty.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.V, 'g', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Of(f)
	return nil
}

// Parse reads a CSV cell written by String.
func Parse(s string) (Value, error) {
	if s == "" {
		return Value{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, err
	}
	return Of(f), nil
}
