package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
	"github.com/gridleaf/easee-telemetry-etl/internal/pipeline"
)

// --- mock site resolver ---

type stubResolver struct {
	info domain.SiteInfo
	err  error
}

func (s *stubResolver) ResolveSite(_ context.Context, _ string) (domain.SiteInfo, error) {
	return s.info, s.err
}

func newTransformer(resolver domain.SiteResolver) *pipeline.ObservationTransformer {
	return pipeline.NewTransformer(resolver, slog.Default(), newTestMetrics())
}

// --- tests ---

func TestTransform_StreamReading(t *testing.T) {
	tfm := newTransformer(nil)

	env := domain.RawReadingEnvelope{
		ChargerID: "EH123456",
		Source:    domain.SourceStream,
		Mode:      domain.ResolveByID,
		Payload:   []byte(`{"id":120,"value":"7.36","timestamp":"2026-08-30T12:00:00Z"}`),
	}

	events, err := tfm.Transform(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, []byte("EH123456"), events[0].Key)
	assert.Equal(t, "TotalPower", events[0].Headers["data_name"])
	assert.Equal(t, "stream", events[0].Headers["source"])

	var rec domain.Record
	require.NoError(t, json.Unmarshal(events[0].Value, &rec))
	assert.Equal(t, "TotalPower", rec.DataName)
	assert.Equal(t, 7.36, rec.Value)
	assert.Equal(t, "kW", rec.Unit)
}

func TestTransform_RestReadingByName(t *testing.T) {
	tfm := newTransformer(nil)

	env := domain.RawReadingEnvelope{
		ChargerID: "EH123456",
		Source:    domain.SourceRest,
		Mode:      domain.ResolveByName,
		Payload:   []byte(`{"dataName":"totalPower","value":7.36,"timestamp":"2026-08-30T12:00:00Z"}`),
	}

	events, err := tfm.Transform(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, events, 1)

	var rec domain.Record
	require.NoError(t, json.Unmarshal(events[0].Value, &rec))
	assert.Equal(t, "TotalPower", rec.DataName)
}

func TestTransform_HistoryBatch(t *testing.T) {
	tfm := newTransformer(nil)

	env := domain.RawReadingEnvelope{
		ChargerID: "EH123456",
		Source:    domain.SourceRestHistory,
		Mode:      domain.ResolveByID,
		Batch:     true,
		Payload: []byte(`[
			{"id":"EH123456_9001_1787990400_121","value":12.5,"timestamp":"2026-08-29T10:30:00Z"},
			{"id":"EH123456_9002_1788000000_121","value":3.1,"timestamp":"2026-08-29T14:00:00Z"}
		]`),
	}

	events, err := tfm.Transform(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, events, 2)

	for _, event := range events {
		assert.Equal(t, []byte("EH123456"), event.Key, "history events keyed by device, not composite id")
		assert.Equal(t, "rest-history", event.Headers["source"])
	}

	var rec domain.Record
	require.NoError(t, json.Unmarshal(events[0].Value, &rec))
	assert.Equal(t, "EH123456_9001_1787990400_121", rec.ID)
	assert.Nil(t, rec.ObservationID, "composite ids do not resolve to the catalogue")
}

func TestTransform_UnknownObservationStillPublishes(t *testing.T) {
	tfm := newTransformer(nil)

	env := domain.RawReadingEnvelope{
		ChargerID: "EH123456",
		Source:    domain.SourceStream,
		Mode:      domain.ResolveByID,
		Payload:   []byte(`{"id":999,"value":"x","timestamp":"2026-08-30T12:00:00Z"}`),
	}

	events, err := tfm.Transform(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, events, 1)

	var rec domain.Record
	require.NoError(t, json.Unmarshal(events[0].Value, &rec))
	assert.Equal(t, "unknown_999", rec.DataName)
}

func TestTransform_UndecodablePayload(t *testing.T) {
	tfm := newTransformer(nil)

	env := domain.RawReadingEnvelope{
		ChargerID: "EH123456",
		Source:    domain.SourceStream,
		Mode:      domain.ResolveByID,
		Payload:   []byte(`not json`),
	}

	_, err := tfm.Transform(context.Background(), env)
	require.Error(t, err)
}

func TestTransform_NonObjectPayload(t *testing.T) {
	tfm := newTransformer(nil)

	env := domain.RawReadingEnvelope{
		ChargerID: "EH123456",
		Source:    domain.SourceStream,
		Mode:      domain.ResolveByID,
		Payload:   []byte(`"just a string"`),
	}

	_, err := tfm.Transform(context.Background(), env)
	require.Error(t, err)
}

func TestTransform_SiteEnrichment(t *testing.T) {
	resolver := &stubResolver{info: domain.SiteInfo{SiteID: "42", CircuitID: "8", ChargerName: "Bay 2"}}
	tfm := newTransformer(resolver)

	env := domain.RawReadingEnvelope{
		ChargerID: "EH123456",
		Source:    domain.SourceStream,
		Mode:      domain.ResolveByID,
		Payload:   []byte(`{"id":120,"value":"7.36","timestamp":"2026-08-30T12:00:00Z"}`),
	}

	events, err := tfm.Transform(context.Background(), env)
	require.NoError(t, err)

	var rec domain.Record
	require.NoError(t, json.Unmarshal(events[0].Value, &rec))
	assert.Equal(t, "42", rec.SiteID)
	assert.Equal(t, "8", rec.CircuitID)
	assert.Equal(t, "Bay 2", rec.ChargerName)
}

func TestTransform_SiteLookupFailureDegradesGracefully(t *testing.T) {
	resolver := &stubResolver{err: errors.New("api unavailable")}
	tfm := newTransformer(resolver)

	env := domain.RawReadingEnvelope{
		ChargerID:  "EH123456",
		Source:     domain.SourceStream,
		Mode:       domain.ResolveByID,
		Payload:    []byte(`{"id":120,"value":"7.36","timestamp":"2026-08-30T12:00:00Z"}`),
		ReceivedAt: time.Now(),
	}

	events, err := tfm.Transform(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, events, 1)

	var rec domain.Record
	require.NoError(t, json.Unmarshal(events[0].Value, &rec))
	assert.Empty(t, rec.SiteID)
	assert.Equal(t, "TotalPower", rec.DataName)
}
