package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Row is one record as returned by a gateway. Values are whatever the
// adapter decoded: strings, bools, numbers (int64, float64, json.Number),
// time.Time or timestamp strings, nested []any/map[string]any for embeds.
type Row map[string]any

// Clone returns a shallow copy.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the column as a string; nil and missing give "".
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// StringPtr returns nil for a missing, null or empty column.
func (r Row) StringPtr(col string) *string {
	s := r.String(col)
	if s == "" {
		return nil
	}
	return &s
}

// Bool returns the column as a bool. Strings "true"/"t"/"1" are true.
func (r Row) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// Int returns the column as an int64 and whether it held a number.
func (r Row) Int(col string) (int64, bool) {
	return ToInt(r[col])
}

// Time returns the column as a time. Zero when missing or unparseable.
func (r Row) Time(col string) time.Time {
	switch v := r[col].(type) {
	case time.Time:
		return v
	case string:
		return ParseTime(v)
	default:
		return time.Time{}
	}
}

// ToInt converts the numeric shapes adapters produce into an int64.
func ToInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.Trunc(n) != n {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime accepts the timestamp formats emitted by Postgres and the data
// API, with or without a zone. Zoneless values are read as UTC.
func ParseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
