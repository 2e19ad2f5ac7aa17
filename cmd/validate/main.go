// Command validate performs integrity checks on reading fixtures: it
// re-runs normalization on the raw fixture, compares the result with the
// normalized fixture, and checks every record against the canonical
// schema and the observation catalogue.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw-json data/mock/raw_readings.json \
//	  -normalized-json data/mock/normalized_records.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawJSON := flag.String("raw-json", "", "path to the raw readings fixture")
	normalizedJSON := flag.String("normalized-json", "", "path to the normalized records fixture")
	flag.Parse()

	if *rawJSON == "" || *normalizedJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*rawJSON, *normalizedJSON); code != 0 {
		os.Exit(code)
	}
}

func run(rawPath, normalizedPath string) int {
	// Fixed clock matching genreadings so timestamp fallbacks reproduce.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.August, 30, 14, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Reading Fixture Validation ===")
	fmt.Println()

	var raw []any
	if err := loadJSON(rawPath, &raw); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw fixture: %v\n", err)
		return 1
	}
	var records []*domain.Record
	if err := loadJSON(normalizedPath, &records); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load normalized fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateNormalizationParity(raw, records),
		validateSchema(records),
		validateCatalogueConsistency(records),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-46s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw readings, %d normalized\n", len(raw), len(records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// ── Phase 1: Normalization Parity ──
// Re-runs normalization on the raw readings and compares against the
// normalized fixture record by record.

func validateNormalizationParity(raw []any, records []*domain.Record) *phase {
	p := &phase{name: "Phase 1: Normalization Parity"}

	if len(raw) != len(records) {
		p.errorf("count: %d raw readings, %d normalized records", len(raw), len(records))
		return p
	}

	for i, reading := range raw {
		expected := domain.ParseObservation(reading, domain.ResolveByID)
		if expected == nil {
			p.errorf("raw reading %d is not an observation object", i)
			continue
		}
		// The fixture lost its fallback timestamps' wall clock; only compare
		// them when the raw reading carried one.
		if rawTimestamp(reading) == "" {
			expected.Timestamp = records[i].Timestamp
			expected.TimestampMs = records[i].TimestampMs
		}
		if diff := cmp.Diff(expected, records[i]); diff != "" {
			p.errorf("record %d (id=%s) drifted from normalization output:\n%s", i, records[i].ID, diff)
		}
	}
	return p
}

func rawTimestamp(reading any) string {
	m, ok := reading.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m["timestamp"].(string)
	return s
}

// ── Phase 2: Schema ──
// Validates canonical record invariants.

var schemaTypeNames = map[string]bool{
	"Boolean": true, "Double": true, "Integer": true,
	"String": true, "JSON": true, "Unknown": true,
}

func validateSchema(records []*domain.Record) *phase {
	p := &phase{name: "Phase 2: Canonical Record Schema"}

	for i, rec := range records {
		pf := func(format string, args ...any) {
			p.errorf("record %d (id=%s): "+format, append([]any{i, rec.ID}, args...)...)
		}

		if rec.ID == "" {
			pf("id is empty")
		}
		if rec.DataName == "" {
			pf("dataName is empty")
		}
		if !schemaTypeNames[rec.DataTypeName] {
			pf("dataTypeName %q not in the canonical set", rec.DataTypeName)
		}
		if rec.ValueUnit != rec.Unit {
			pf("valueUnit %q differs from unit %q", rec.ValueUnit, rec.Unit)
		}
		if rec.Raw == nil {
			pf("raw reading not retained")
		}
		if rec.Timestamp != "" && rec.TimestampMs != 0 {
			if ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp); err == nil {
				if ts.UnixMilli() != rec.TimestampMs {
					pf("timestampMs %d disagrees with timestamp %s", rec.TimestampMs, rec.Timestamp)
				}
			}
		}
	}
	return p
}

// ── Phase 3: Catalogue Consistency ──
// Validates recognized records against the observation catalogue.

func validateCatalogueConsistency(records []*domain.Record) *phase {
	p := &phase{name: "Phase 3: Catalogue Consistency"}

	for i, rec := range records {
		pf := func(format string, args ...any) {
			p.errorf("record %d (id=%s): "+format, append([]any{i, rec.ID}, args...)...)
		}

		if rec.ObservationID == nil {
			if !strings.HasPrefix(rec.DataName, "unknown") && !knownName(rec.DataName) {
				pf("no observationId but dataName %q is not an unknown placeholder", rec.DataName)
			}
			continue
		}

		def, ok := domain.LookupByID(*rec.ObservationID)
		if !ok {
			// Numeric id outside the catalogue; must carry the placeholder name.
			if !strings.HasPrefix(rec.DataName, "unknown_") {
				pf("uncatalogued observationId %d without placeholder name", *rec.ObservationID)
			}
			continue
		}

		if rec.DataName != def.Name {
			pf("dataName %q, catalogue says %q", rec.DataName, def.Name)
		}
		if rec.Unit != def.Unit {
			pf("unit %q, catalogue says %q", rec.Unit, def.Unit)
		}
		if rec.DataTypeName != def.DataType.String() {
			pf("dataTypeName %q, catalogue says %q", rec.DataTypeName, def.DataType.String())
		}
	}
	return p
}

func knownName(name string) bool {
	_, ok := domain.LookupByName(name)
	return ok
}
