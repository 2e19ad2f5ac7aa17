package pipeline

import (
	"context"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
)

// ChannelSource fans raw reading envelopes from both transports into one
// ordered stream. The streaming client and the REST poller publish into it
// concurrently; the pipeline drains it in batches. It implements
// BatchExtractor.
type ChannelSource struct {
	ch chan domain.RawReadingEnvelope
}

// NewChannelSource creates a source with the given buffer capacity.
func NewChannelSource(buffer int) *ChannelSource {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSource{ch: make(chan domain.RawReadingEnvelope, buffer)}
}

// Publish enqueues one envelope, blocking while the buffer is full so slow
// consumers apply backpressure to the transports.
func (s *ChannelSource) Publish(ctx context.Context, env domain.RawReadingEnvelope) error {
	select {
	case s.ch <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExtractBatch blocks for the first envelope, then drains whatever else is
// already buffered, up to batchSize.
func (s *ChannelSource) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawReadingEnvelope, error) {
	var first domain.RawReadingEnvelope
	select {
	case first = <-s.ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	batch := make([]domain.RawReadingEnvelope, 1, batchSize)
	batch[0] = first
	for len(batch) < batchSize {
		select {
		case env := <-s.ch:
			batch = append(batch, env)
		default:
			return batch, nil
		}
	}
	return batch, nil
}
