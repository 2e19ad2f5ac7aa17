package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
	"github.com/gridleaf/easee-telemetry-etl/internal/observability"
	"github.com/gridleaf/easee-telemetry-etl/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawReadingEnvelope
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawReadingEnvelope, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for readings
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, env domain.RawReadingEnvelope) ([]domain.OutputEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.OutputEvent{{Key: []byte(env.ChargerID), Value: env.Payload}}, nil
}

type mockLoader struct {
	loaded []domain.OutputEvent
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func makeEnvelope(chargerID string) domain.RawReadingEnvelope {
	return domain.RawReadingEnvelope{
		ChargerID:  chargerID,
		Source:     domain.SourceStream,
		Mode:       domain.ResolveByID,
		Payload:    []byte(`{"id":120,"value":"7.36","timestamp":"2026-08-30T12:00:00Z"}`),
		ReceivedAt: time.Now(),
	}
}

// --- pipeline tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RawReadingEnvelope{
		{makeEnvelope("EH123456"), makeEnvelope("EH789012")},
	}}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, ldr.loaded, 2)
	assert.Equal(t, []byte("EH123456"), ldr.loaded[0].Key)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no batches, will block
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
}

func TestPipeline_Run_TransformErrorSkipsReading(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RawReadingEnvelope{
		{makeEnvelope("EH123456")},
	}}
	tfm := &mockTransformer{err: errors.New("bad payload")}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_LoadErrorBacksOff(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RawReadingEnvelope{
		{makeEnvelope("EH123456")},
	}}
	ldr := &mockLoader{err: errors.New("brokers unreachable")}

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Run(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond, "should sleep before retrying")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_NotReadyBeforeFirstPublish(t *testing.T) {
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, &mockLoader{}, slog.Default(), newTestMetrics(), 10)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

// --- channel source tests ---

func TestChannelSource_PublishAndExtract(t *testing.T) {
	src := pipeline.NewChannelSource(8)
	ctx := context.Background()

	require.NoError(t, src.Publish(ctx, makeEnvelope("EH123456")))
	require.NoError(t, src.Publish(ctx, makeEnvelope("EH789012")))

	batch, err := src.ExtractBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "EH123456", batch[0].ChargerID)
	assert.Equal(t, "EH789012", batch[1].ChargerID)
}

func TestChannelSource_ExtractRespectsBatchSize(t *testing.T) {
	src := pipeline.NewChannelSource(8)
	ctx := context.Background()

	for range 5 {
		require.NoError(t, src.Publish(ctx, makeEnvelope("EH123456")))
	}

	batch, err := src.ExtractBatch(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, batch, 3)

	batch, err = src.ExtractBatch(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestChannelSource_ExtractBlocksUntilCancelled(t *testing.T) {
	src := pipeline.NewChannelSource(8)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := src.ExtractBatch(ctx, 10)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChannelSource_PublishBlocksWhenFull(t *testing.T) {
	src := pipeline.NewChannelSource(1)
	ctx := context.Background()

	require.NoError(t, src.Publish(ctx, makeEnvelope("EH123456")))

	blockedCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := src.Publish(blockedCtx, makeEnvelope("EH789012"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
