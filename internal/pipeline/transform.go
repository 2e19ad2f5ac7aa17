package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
	"github.com/gridleaf/easee-telemetry-etl/internal/observability"
)

// ObservationTransformer turns raw reading envelopes into serialized
// canonical records, with optional site enrichment. It implements
// Transformer.
type ObservationTransformer struct {
	resolver domain.SiteResolver
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates an ObservationTransformer. Pass a nil resolver to
// disable site enrichment.
func NewTransformer(resolver domain.SiteResolver, logger *slog.Logger, metrics *observability.Metrics) *ObservationTransformer {
	return &ObservationTransformer{
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
	}
}

// Transform normalizes one envelope. Single-reading envelopes yield one
// output event; history envelopes carry an array of composite-id readings
// and yield one event per record, keyed by device. A payload with no
// observation data at all is an error; unrecognized observations are not.
func (t *ObservationTransformer) Transform(ctx context.Context, env domain.RawReadingEnvelope) ([]domain.OutputEvent, error) {
	var decoded any
	if err := json.Unmarshal(env.Payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode raw reading: %w", err)
	}

	if env.Batch {
		return t.transformBatch(ctx, decoded, env)
	}

	rec := domain.ParseObservation(decoded, env.Mode)
	if rec == nil {
		return nil, fmt.Errorf("payload from %s is not an observation object", env.Source)
	}
	t.observe(env.Source, rec)

	domain.EnrichWithSite(ctx, rec, env.ChargerID, t.resolver, t.logger)
	out, err := serializeRecord(env.ChargerID, env.Source, rec)
	if err != nil {
		return nil, err
	}
	return []domain.OutputEvent{out}, nil
}

func (t *ObservationTransformer) transformBatch(ctx context.Context, decoded any, env domain.RawReadingEnvelope) ([]domain.OutputEvent, error) {
	readings, ok := decoded.([]any)
	if !ok {
		return nil, fmt.Errorf("history payload from %s is not an array", env.Source)
	}

	batch := domain.ParseObservations(readings)
	out := make([]domain.OutputEvent, 0, batch.Len())
	for _, device := range batch.Devices {
		for _, rec := range batch.Records[device] {
			t.observe(env.Source, rec)
			domain.EnrichWithSite(ctx, rec, device, t.resolver, t.logger)
			event, err := serializeRecord(device, env.Source, rec)
			if err != nil {
				return nil, err
			}
			out = append(out, event)
		}
	}
	return out, nil
}

func (t *ObservationTransformer) observe(source string, rec *domain.Record) {
	t.metrics.ReadingsNormalized.WithLabelValues(source).Inc()
	if rec.DataType == domain.Unknown {
		t.metrics.UnknownObservations.Inc()
		t.logger.Debug("unrecognized observation", "id", rec.ID, "data_name", rec.DataName)
	}
}

// serializeRecord marshals a canonical record into an output event keyed by
// the charger it came from.
func serializeRecord(chargerID, source string, rec *domain.Record) (domain.OutputEvent, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize canonical record: %w", err)
	}
	return domain.OutputEvent{
		Key:   []byte(chargerID),
		Value: data,
		Headers: map[string]string{
			"data_name": rec.DataName,
			"source":    source,
		},
	}, nil
}
