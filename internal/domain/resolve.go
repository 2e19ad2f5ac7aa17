package domain

import (
	"fmt"
	"strconv"
)

// ResolveMode selects which key of a raw reading identifies the observation.
// The streaming transport keys readings by numeric id; the REST transport
// keys them by field name.
type ResolveMode string

const (
	ResolveByID   ResolveMode = "id"
	ResolveByName ResolveMode = "name"
)

// ResolveDefinition maps a raw reading to its observation definition.
//
// In id mode the raw "id" must be numeric or numeric-shaped; composite
// string ids (device_session_epoch_observation) do not resolve and fall
// back to the unknown shape. In name mode the candidate is
// "dataName", or "id" treated as a string when dataName is absent, resolved
// through the tiers of LookupByName.
func ResolveDefinition(raw map[string]any, mode ResolveMode) (*Definition, bool) {
	switch mode {
	case ResolveByName:
		candidate, ok := nameCandidate(raw)
		if !ok {
			return nil, false
		}
		return LookupByName(candidate)
	default:
		n, ok := numericKey(raw["id"])
		if !ok {
			return nil, false
		}
		return LookupByID(n)
	}
}

func nameCandidate(raw map[string]any) (string, bool) {
	if s, ok := raw["dataName"].(string); ok && s != "" {
		return s, true
	}
	if id, ok := raw["id"]; ok && id != nil {
		return keyString(id), true
	}
	return "", false
}

// numericKey extracts an integer observation id from a raw key. JSON
// numbers arrive as float64; only whole values qualify, and numeric-shaped
// strings ("120") count too.
func numericKey(v any) (int, bool) {
	switch {
	case v == nil:
		return 0, false
	default:
		if f, ok := asFloat(v); ok {
			n := int(f)
			if float64(n) == f {
				return n, true
			}
			return 0, false
		}
	}
	if s, ok := v.(string); ok {
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}

// keyString renders a raw id for echoing into the canonical record.
func keyString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	default:
		if f, ok := asFloat(v); ok {
			return formatNumber(f)
		}
		return fmt.Sprintf("%v", v)
	}
}
