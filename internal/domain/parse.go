package domain

import (
	"strings"
	"time"
)

// Record is the canonical observation record: one raw reading resolved,
// coerced, and enriched. Field names in the JSON encoding are an external
// contract shared with downstream consumers.
//
// ValueUnit and Unit always carry the same value; Unit is a compatibility
// alias kept for older consumers. Every record is self-contained - it holds
// copies of registry data, never references into it.
type Record struct {
	ID            string         `json:"id"`
	DataName      string         `json:"dataName"`
	ObservationID *int           `json:"observationId,omitempty"`
	DataType      DataType       `json:"dataType,omitempty"`
	DataTypeName  string         `json:"dataTypeName"`
	Value         any            `json:"value"`
	ValueText     string         `json:"valueText"`
	ValueUnit     string         `json:"valueUnit"`
	Unit          string         `json:"unit"`
	Timestamp     string         `json:"timestamp"`
	TimestampMs   int64          `json:"timestampMs"`
	Raw           map[string]any `json:"raw,omitempty"`

	// Optional site enrichment, stamped by EnrichWithSite.
	SiteID      string `json:"siteId,omitempty"`
	CircuitID   string `json:"circuitId,omitempty"`
	ChargerName string `json:"chargerName,omitempty"`
}

// ParseObservation normalizes one raw reading into a canonical record.
//
// The input must be a decoded JSON object (map[string]any); anything else -
// nil, strings, numbers - returns nil, signalling that no observation data
// was present at all. Malformed or unrecognized domain data inside a valid
// object never fails: unknown keys resolve to an unknown_* placeholder,
// uncoercible values pass through, and missing enum entries leave the value
// text empty. Unknown observation ids are a supported path, not an error;
// device firmware grows observations faster than this catalogue does.
func ParseObservation(input any, mode ResolveMode) *Record {
	raw, ok := input.(map[string]any)
	if !ok {
		return nil
	}

	def, _ := ResolveDefinition(raw, mode)
	rec := &Record{Raw: raw}

	idVal, hasID := raw["id"]
	if hasID && idVal != nil {
		rec.ID = keyString(idVal)
	} else {
		rec.ID = "unknown"
	}

	switch {
	case def != nil:
		obsID := def.ID
		rec.ObservationID = &obsID
		rec.DataName = def.Name
		rec.DataType = def.DataType
		rec.Unit = def.Unit
	default:
		// The numeric id is preserved even when unrecognized so streaming
		// consumers can still correlate by observation number.
		if n, numeric := numericKey(idVal); numeric {
			rec.ObservationID = &n
		}
		if name, named := raw["dataName"].(string); named && name != "" {
			rec.DataName = name
		} else if hasID && idVal != nil {
			rec.DataName = "unknown_" + keyString(idVal)
		} else {
			rec.DataName = "unknown_undefined"
		}
	}
	rec.DataTypeName = rec.DataType.String()
	rec.ValueUnit = rec.Unit

	value, text := CoerceValue(rec.DataType, raw["value"])
	if text == "" && def != nil {
		text = def.MappedText(value)
	}
	rec.Value = value
	rec.ValueText = text

	if ts, tok := raw["timestamp"].(string); tok && ts != "" {
		rec.Timestamp = ts
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			rec.TimestampMs = t.UnixMilli()
		}
	} else {
		now := clock.Now().UTC().Truncate(time.Millisecond)
		rec.Timestamp = now.Format(time.RFC3339Nano)
		rec.TimestampMs = now.UnixMilli()
	}

	return rec
}

// DeviceBatch groups canonical records by originating device, preserving
// first-seen order of devices and input order of records within a device.
type DeviceBatch struct {
	Devices []string
	Records map[string][]*Record
}

func (b *DeviceBatch) add(device string, rec *Record) {
	if _, seen := b.Records[device]; !seen {
		b.Devices = append(b.Devices, device)
	}
	b.Records[device] = append(b.Records[device], rec)
}

// Len returns the total number of records across all devices.
func (b *DeviceBatch) Len() int {
	n := 0
	for _, recs := range b.Records {
		n += len(recs)
	}
	return n
}

// ParseObservations normalizes a sequence of raw readings in id mode and
// partitions the results by device. The REST transport flattens per-device
// histories into composite ids (device_session_epoch_observation); the
// device key is the segment before the first underscore. Entries that are
// not JSON objects are skipped.
func ParseObservations(readings []any) *DeviceBatch {
	batch := &DeviceBatch{Records: make(map[string][]*Record)}
	for _, reading := range readings {
		rec := ParseObservation(reading, ResolveByID)
		if rec == nil {
			continue
		}
		batch.add(deviceKey(rec.ID), rec)
	}
	return batch
}

// deviceKey extracts the device id from a composite reading id. Ids with
// fewer than four underscore-separated segments do not follow the composite
// format and group under the verbatim id instead.
func deviceKey(id string) string {
	if parts := strings.Split(id, "_"); len(parts) >= 4 {
		return parts[0]
	}
	return id
}
