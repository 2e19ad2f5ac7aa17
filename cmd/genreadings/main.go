// Command genreadings generates synthetic raw charger readings and their
// normalized counterparts as JSON fixtures. It runs the actual domain
// package so the normalized output matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genreadings \
//	  -chargers EH123456,EH789012 \
//	  -count 25 \
//	  -raw-out data/mock/raw_readings.json \
//	  -normalized-out data/mock/normalized_records.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
)

var baseTime = time.Date(2026, time.August, 30, 8, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	chargers := flag.String("chargers", "EH123456,EH789012", "comma-separated charger ids")
	count := flag.Int("count", 25, "readings per charger")
	seed := flag.Int64("seed", 1, "random seed for reproducible fixtures")
	rawOut := flag.String("raw-out", "", "output path for the raw readings fixture")
	normalizedOut := flag.String("normalized-out", "", "output path for the normalized records fixture")
	flag.Parse()

	if *rawOut == "" || *normalizedOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -normalized-out")
	}

	// Set a fixed clock so readings without timestamps normalize
	// reproducibly.
	domain.SetClock(clockwork.NewFakeClockAt(baseTime.Add(6 * time.Hour)))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))
	defs := domain.Definitions()

	var raw []any
	var normalized []*domain.Record

	for _, chargerID := range strings.Split(*chargers, ",") {
		chargerID = strings.TrimSpace(chargerID)

		for i := 0; i < *count; i++ {
			reading := streamReading(rng, defs, chargerID, i)
			raw = append(raw, reading)

			rec := domain.ParseObservation(reading, domain.ResolveByID)
			if rec == nil {
				return fmt.Errorf("generated reading did not normalize: %v", reading)
			}
			normalized = append(normalized, rec)
		}

		history := sessionHistory(rng, chargerID)
		raw = append(raw, history...)

		batch := domain.ParseObservations(history)
		for _, device := range batch.Devices {
			normalized = append(normalized, batch.Records[device]...)
		}
	}

	if err := writeJSON(*rawOut, raw); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s (%d readings)", *rawOut, len(raw))

	if err := writeJSON(*normalizedOut, normalized); err != nil {
		return fmt.Errorf("writing normalized fixture: %w", err)
	}
	log.Printf("wrote normalized fixture: %s (%d records)", *normalizedOut, len(normalized))
	log.Printf("fixture run id: %s", uuid.NewString())

	printStats(normalized)
	return nil
}

// streamReading builds one hub-style reading for a random catalogue entry,
// with raw values shaped the way the cloud actually sends them: numbers
// and booleans arrive as strings.
func streamReading(rng *rand.Rand, defs []domain.Definition, chargerID string, seq int) map[string]any {
	def := defs[rng.Intn(len(defs))]
	ts := baseTime.Add(time.Duration(seq) * 15 * time.Second)

	return map[string]any{
		"mid":       chargerID,
		"id":        def.ID,
		"dataType":  int(def.DataType),
		"timestamp": ts.Format(time.RFC3339),
		"value":     rawValue(rng, def),
	}
}

func rawValue(rng *rand.Rand, def domain.Definition) string {
	if len(def.ValueMapping) > 0 {
		return def.ValueMapping[rng.Intn(len(def.ValueMapping))].Key
	}
	switch def.DataType {
	case domain.Boolean:
		if rng.Intn(2) == 0 {
			return "false"
		}
		return "true"
	case domain.Integer:
		return strconv.Itoa(rng.Intn(32))
	case domain.Double:
		return strconv.FormatFloat(rng.Float64()*22, 'f', 2, 64)
	case domain.JSON:
		return fmt.Sprintf(`{"schedule":{"enabled":%t}}`, rng.Intn(2) == 0)
	default:
		return fmt.Sprintf("release-%d", rng.Intn(400))
	}
}

// sessionHistory builds composite-id session energy readings for one
// charger, the shape the REST history poll produces.
func sessionHistory(rng *rand.Rand, chargerID string) []any {
	n := 2 + rng.Intn(3)
	history := make([]any, n)
	for i := 0; i < n; i++ {
		start := baseTime.Add(-time.Duration(n-i) * 24 * time.Hour)
		end := start.Add(time.Duration(1+rng.Intn(5)) * time.Hour)
		history[i] = map[string]any{
			"id":        fmt.Sprintf("%s_%d_%d_121", chargerID, 9000+i, start.Unix()),
			"value":     rng.Float64() * 40,
			"timestamp": end.Format(time.RFC3339),
		}
	}
	return history
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(records []*domain.Record) {
	typeCounts := map[string]int{}
	deviceCounts := map[string]int{}
	var unknown, mapped int

	for _, rec := range records {
		typeCounts[rec.DataTypeName]++
		deviceCounts[deviceOf(rec)]++
		if rec.DataType == domain.Unknown {
			unknown++
		}
		if rec.ValueText != "" {
			mapped++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(records))
	fmt.Printf("By type: boolean=%d, double=%d, integer=%d, string=%d, json=%d\n",
		typeCounts["Boolean"], typeCounts["Double"], typeCounts["Integer"],
		typeCounts["String"], typeCounts["JSON"])
	fmt.Printf("Unknown observations: %d\n", unknown)
	fmt.Printf("With value text: %d\n", mapped)
	for device, n := range deviceCounts {
		fmt.Printf("  %s: %d records\n", device, n)
	}
}

func deviceOf(rec *domain.Record) string {
	if mid, ok := rec.Raw["mid"].(string); ok {
		return mid
	}
	if parts := strings.Split(rec.ID, "_"); len(parts) >= 4 {
		return parts[0]
	}
	return rec.ID
}
