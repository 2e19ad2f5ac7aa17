package domain

import (
	"strings"
	"unicode"
)

// DataType is the numeric type code a definition declares for its values.
// The codes come from the Easee cloud API and are a fixed external contract;
// downstream consumers match on them, so they must never be renumbered.
type DataType int

const (
	Unknown DataType = 0
	Boolean DataType = 2
	Double  DataType = 3
	Integer DataType = 4
	String  DataType = 6
	JSON    DataType = 8
)

// String returns the symbolic name for the type code, "Unknown" for
// anything unlisted.
func (d DataType) String() string {
	switch d {
	case Boolean:
		return "Boolean"
	case Double:
		return "Double"
	case Integer:
		return "Integer"
	case String:
		return "String"
	case JSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// ValueText maps one raw enum value to its display text. Keys are stored as
// canonical strings; lookups stringify the incoming value before comparing,
// so the number 3 and the string "3" hit the same entry.
type ValueText struct {
	Key  string
	Text string
}

// Definition describes one observation the charger can report: its numeric
// id on the streaming channel, its canonical name, the alternate names the
// REST charger-state payload uses for the same field, its declared value
// type and unit, and an optional enum table.
//
// Definitions are built once at process start and never mutated, so they are
// safe for unsynchronized concurrent reads.
type Definition struct {
	ID           int
	Name         string
	AltNames     []string
	DataType     DataType
	Unit         string
	ValueMapping []ValueText
}

// MappedText looks up display text for a coerced value in the definition's
// enum table. Returns "" when the definition has no table or the value has
// no entry.
func (d *Definition) MappedText(value any) string {
	if len(d.ValueMapping) == 0 {
		return ""
	}
	key, ok := mappingKey(value)
	if !ok {
		return ""
	}
	for _, vt := range d.ValueMapping {
		if vt.Key == key {
			return vt.Text
		}
	}
	return ""
}

// normalizeName lower-cases a name and strips every non-alphanumeric rune.
// It backs the fuzziest resolution tier, tolerating producer-side variance
// like "inVoltageT1T2" vs "InVolt_T1_T2".
func normalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
