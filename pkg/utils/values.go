package utils

import (
	"fmt"
	"strconv"
)

// JSONString renders a decoded JSON value the way a template literal would:
// numbers without exponent noise, nil as "null", strings unchanged.
func JSONString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// OptionalString is JSONString for present, non-empty values and nil otherwise.
func OptionalString(v any) any {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	return JSONString(v)
}

// AnyToFloat converts a decoded JSON number (or numeric string) to float64.
func AnyToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// AnyToStringSlice converts a decoded JSON array into strings, dropping nulls.
func AnyToStringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if e == nil {
				continue
			}
			out = append(out, JSONString(e))
		}
		return out, true
	default:
		return nil, false
	}
}
