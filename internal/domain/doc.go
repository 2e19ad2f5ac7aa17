// Package domain normalizes raw Easee charger readings into canonical,
// strongly-typed observation records.
//
// # Data Sources
//
// Readings arrive over two transports with different shapes:
//
//	Streaming: the cloud pushes one reading per observation, keyed by the
//	numeric observation id ("id": 120). Values are loosely typed - the
//	feed serializes everything as strings or numbers regardless of the
//	declared type.
//
//	REST polling: the charger-state endpoint returns a flat object keyed
//	by field name ("totalPower": 3.52); the session-history endpoints are
//	flattened by the poller into readings with composite ids of the form
//	<chargerId>_<session>_<epoch>_<observationId>.
//
// # Observation Catalogue
//
// The registry in registry.go holds the static observation definitions:
// numeric id, canonical streaming name, REST field-name aliases, declared
// data type, unit, and an enum table for the handful of observations that
// report coded states (PilotMode, ChargerOpMode, ReasonForNoCurrent, ...).
// Data type codes are fixed by the cloud API:
//
//	2 Boolean | 3 Double | 4 Integer | 6 String | 8 JSON
//
// # Name Resolution
//
// REST producers are inconsistent about casing and separators, so name
// resolution runs in tiers: exact canonical name, case-insensitive
// canonical name, alternate names, then a normalized comparison that
// lower-cases and strips non-alphanumerics ("inVoltageT1T2" resolves to
// InVolt_T1_T2). Only full-string equality is allowed under each tier.
//
// # Failure Behavior
//
// Normalization never raises errors for domain data. Unknown ids keep the
// numeric id and synthesize an unknown_<id> placeholder name, uncoercible
// values pass through unchanged, JSON parse failures are reported inline in
// the value text, and missing enum entries leave the text empty. The only
// hard failure is a call-shape violation: handing ParseObservation anything
// that is not a JSON object yields nil.
package domain
