// Package numeric parses the loosely typed numbers found in imported rows and
// rounds derived values the way stored percentages expect.
package numeric

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts a row value to float64. Blank, non-numeric, NaN and
// infinite values report ok=false. A trailing "%" and a decimal comma are accepted.
func Parse(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint64:
		f = float64(t)
	case decimal.Decimal:
		f = t.InexactFloat64()
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if s == "" {
			return 0, false
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Strict is Parse without the lenient string forms: a decimal comma or a
// trailing "%" makes the value non-numeric. Raw test values go through Strict.
func Strict(v any) (float64, bool) {
	if s, ok := v.(string); ok && strings.ContainsAny(s, ",%") {
		return 0, false
	}
	return Parse(v)
}

// Ptr is Parse returning nil for absent values.
func Ptr(v any) *float64 {
	f, ok := Parse(v)
	if !ok {
		return nil
	}
	return &f
}

// Int parses an integral value. "2012.0" is accepted, "2012.5" is not.
func Int(v any) (int, bool) {
	f, ok := Parse(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Round rounds half away from zero on the decimal representation of x, so
// 0.05 rounds to 0.1 even though its binary form is slightly below.
func Round(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// Percent returns round(part/whole*100, places). ok is false for a zero whole.
func Percent(part, whole float64, places int32) (float64, bool) {
	if whole == 0 {
		return 0, false
	}
	p := decimal.NewFromFloat(part).Div(decimal.NewFromFloat(whole)).Mul(decimal.NewFromInt(100))
	return p.Round(places).InexactFloat64(), true
}

// Mean averages values. ok is false for an empty slice.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))).InexactFloat64(), true
}

// Float returns a pointer to f, for optional fields.
func Float(f float64) *float64 { return &f }

// Format renders an integral float without a fraction, used for table column keys.
func Format(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
