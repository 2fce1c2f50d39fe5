// Package model contains the domain records passed between the store, the
// rules engines and the transport layers.
package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/piste/internal/domain/numeric"
)

// Row is one loosely typed record as held by the data store.
type Row map[string]any

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge copies every field of other into r.
func (r Row) Merge(other Row) Row {
	for k, v := range other {
		r[k] = v
	}
	return r
}

// String returns the trimmed textual form of a field, "" when absent.
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Float parses a numeric field.
func (r Row) Float(key string) (float64, bool) { return numeric.Parse(r[key]) }

// FloatPtr parses a numeric field, nil when absent or malformed.
func (r Row) FloatPtr(key string) *float64 { return numeric.Ptr(r[key]) }

// Int parses an integral field.
func (r Row) Int(key string) (int, bool) { return numeric.Int(r[key]) }

// Yes reports whether a flag field holds yes/true/1.
func (r Row) Yes(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case nil:
		return false
	}
	switch strings.ToLower(r.String(key)) {
	case "yes", "true", "1", "ja", "x":
		return true
	}
	return false
}

// OptionalFloat converts an optional value for storage: nil stays nil.
func OptionalFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// YesNo renders a flag the way selection columns store it.
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
