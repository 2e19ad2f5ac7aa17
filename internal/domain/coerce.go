package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CoerceValue converts a raw value to the shape its declared data type
// demands. It never fails: input that cannot be coerced passes through
// unchanged so no producer data is ever lost. The second return value is
// diagnostic text, only set on the JSON paths; every other type leaves it
// empty for the enum mapper to fill in.
//
// A nil raw value coerces to itself with empty text regardless of the
// declared type.
func CoerceValue(dataType DataType, raw any) (any, string) {
	if raw == nil {
		return nil, ""
	}

	switch dataType {
	case Boolean:
		return coerceBoolean(raw), ""
	case Integer:
		return coerceInteger(raw), ""
	case Double:
		return coerceDouble(raw), ""
	case String:
		return stringify(raw), ""
	case JSON:
		return coerceJSON(raw)
	default:
		return raw, ""
	}
}

// coerceBoolean accepts the exact strings "true"/"false" and numeric
// truthiness (non-zero is true). Anything else passes through.
func coerceBoolean(raw any) any {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch v {
		case "true":
			return true
		case "false":
			return false
		}
		return v
	default:
		if f, ok := asFloat(raw); ok {
			return f != 0
		}
		return raw
	}
}

func coerceInteger(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	// Producers occasionally send integer observations as "12.0".
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return raw
}

func coerceDouble(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return raw
}

// coerceJSON parses string payloads into structured data. Parse failures
// keep the original string and report the parser diagnostic in the text so
// the failure is visible downstream without halting the batch.
func coerceJSON(raw any) (any, string) {
	switch v := raw.(type) {
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return v, "JSON parse error: " + err.Error()
		}
		return parsed, "JSON data parsed successfully"
	case map[string]any, []any:
		return v, "JSON object"
	default:
		return raw, ""
	}
}

// stringify renders a raw value as a string. Structured values become
// compact JSON rather than Go's fmt representation.
func stringify(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case map[string]any, []any:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	default:
		if f, ok := asFloat(raw); ok {
			return formatNumber(f)
		}
		return fmt.Sprintf("%v", raw)
	}
}

// mappingKey renders a coerced value as an enum-table key. Numbers and
// strings both stringify so the value 3 and the value "3" address the same
// entry; other shapes have no key.
func mappingKey(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	default:
		if f, ok := asFloat(value); ok {
			return formatNumber(f), true
		}
		return "", false
	}
}

// asFloat widens any numeric type to float64. JSON decoding only produces
// float64, but programmatic callers hand us native ints too.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// formatNumber renders a float without a trailing ".0" for whole values,
// so 3.0 keys the same enum entry as "3".
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
