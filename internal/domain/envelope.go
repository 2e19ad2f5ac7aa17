package domain

import "time"

// Source labels for raw reading envelopes.
const (
	SourceStream      = "stream"
	SourceRest        = "rest"
	SourceRestHistory = "rest-history"
)

// RawReadingEnvelope wraps one unprocessed payload from either transport.
// Payload is the raw JSON: a single reading object for the streaming and
// REST state channels, or an array of composite-id readings for flattened
// session histories (Batch set).
type RawReadingEnvelope struct {
	ChargerID  string
	Source     string
	Mode       ResolveMode
	Batch      bool
	Payload    []byte
	ReceivedAt time.Time
}

// OutputEvent is one serialized canonical record destined for the sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
