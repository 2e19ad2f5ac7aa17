package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_UniqueIDsAndNames(t *testing.T) {
	seenIDs := make(map[int]string)
	seenNames := make(map[string]int)

	for _, def := range Definitions() {
		require.Positive(t, def.ID, "definition %q has non-positive id", def.Name)
		require.NotEmpty(t, def.Name, "definition %d has empty name", def.ID)

		if prev, dup := seenIDs[def.ID]; dup {
			t.Errorf("id %d used by both %q and %q", def.ID, prev, def.Name)
		}
		if prev, dup := seenNames[def.Name]; dup {
			t.Errorf("name %q used by both id %d and %d", def.Name, prev, def.ID)
		}
		seenIDs[def.ID] = def.Name
		seenNames[def.Name] = def.ID
	}
}

func TestRegistry_DeclaredTypes(t *testing.T) {
	valid := map[DataType]bool{Boolean: true, Double: true, Integer: true, String: true, JSON: true}
	for _, def := range Definitions() {
		assert.True(t, valid[def.DataType], "%s declares unsupported type %d", def.Name, def.DataType)
	}
}

func TestLookupByID_CoversCatalogue(t *testing.T) {
	for _, def := range Definitions() {
		got, ok := LookupByID(def.ID)
		require.True(t, ok, "id %d not indexed", def.ID)
		assert.Equal(t, def.Name, got.Name)
	}
}

func TestLookupByID_Unknown(t *testing.T) {
	_, ok := LookupByID(999)
	assert.False(t, ok)
}

func TestLookupByName_Tiers(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"exact canonical", "TotalPower", "TotalPower"},
		{"case-insensitive canonical", "totalpower", "TotalPower"},
		{"alternate name", "totalPower", "TotalPower"},
		{"case-insensitive alternate", "CHARGERFIRMWARE", "SoftwareRelease"},
		{"separator-stripped", "in_current_t2", "InCurrent_T2"},
		{"alternate without separators", "incurrentt2", "InCurrent_T2"},
		{"rest voltage alias", "inVoltageT1T2", "InVolt_T1_T2"},
		{"canonical with separators stripped", "InVoltT1T2", "InVolt_T1_T2"},
		{"rest online alias", "isOnline", "ConnectedToCloud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := LookupByName(tt.query)
			require.True(t, ok, "query %q did not resolve", tt.query)
			assert.Equal(t, tt.want, def.Name)
		})
	}
}

func TestLookupByName_NoPartialMatching(t *testing.T) {
	for _, query := range []string{"TotalPow", "Total", "Current", "InVolt"} {
		_, ok := LookupByName(query)
		assert.False(t, ok, "substring %q must not resolve", query)
	}
}

// Every canonical and alternate name must survive a round trip through the
// fuzzy tier: upper-cased and with separators stripped, it still resolves
// to the definition that declared it.
func TestLookupByName_AllNamesRoundTrip(t *testing.T) {
	for _, def := range Definitions() {
		names := append([]string{def.Name}, def.AltNames...)
		for _, name := range names {
			mangled := strings.ToUpper(strings.ReplaceAll(name, "_", ""))
			got, ok := LookupByName(mangled)
			require.True(t, ok, "mangled name %q (from %s) did not resolve", mangled, def.Name)
			assert.Equal(t, def.ID, got.ID, "mangled name %q resolved to %s, declared by %s", mangled, got.Name, def.Name)
		}
	}
}

func TestMappedText(t *testing.T) {
	opMode, ok := LookupByName("ChargerOpMode")
	require.True(t, ok)

	t.Run("numeric and string keys are equivalent", func(t *testing.T) {
		assert.Equal(t, "Charging", opMode.MappedText(float64(3)))
		assert.Equal(t, "Charging", opMode.MappedText("3"))
		assert.Equal(t, "Charging", opMode.MappedText(int64(3)))
	})

	t.Run("single-character string keys", func(t *testing.T) {
		pilot, pok := LookupByName("PilotMode")
		require.True(t, pok)
		assert.Equal(t, "Car connected", pilot.MappedText("B"))
		assert.Equal(t, "Car charging", pilot.MappedText("C"))
	})

	t.Run("unknown value degrades to empty text", func(t *testing.T) {
		assert.Equal(t, "", opMode.MappedText(float64(42)))
	})

	t.Run("no table means no text", func(t *testing.T) {
		power, pok := LookupByName("TotalPower")
		require.True(t, pok)
		assert.Equal(t, "", power.MappedText(float64(3)))
	})
}
