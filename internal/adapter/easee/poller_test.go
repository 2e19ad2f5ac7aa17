package easee

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
)

// --- mock publisher ---

type capturingPublisher struct {
	envelopes []domain.RawReadingEnvelope
}

func (p *capturingPublisher) Publish(_ context.Context, env domain.RawReadingEnvelope) error {
	p.envelopes = append(p.envelopes, env)
	return nil
}

func (p *capturingPublisher) bySource(source string) []domain.RawReadingEnvelope {
	var out []domain.RawReadingEnvelope
	for _, env := range p.envelopes {
		if env.Source == source {
			out = append(out, env)
		}
	}
	return out
}

func testPoller(t *testing.T, baseURL string, publisher Publisher) *Poller {
	t.Helper()
	client := testClient(baseURL)
	p := NewPoller(client, publisher, []string{"EH123456"}, time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.clock = clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	return p
}

func TestPoller_StateReadings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		switch r.URL.Path {
		case "/api/chargers/EH123456/state":
			_, _ = w.Write([]byte(`{"totalPower":7.36,"isOnline":true,"latestPulse":"2026-08-30T11:59:58Z"}`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	publisher := &capturingPublisher{}
	p := testPoller(t, srv.URL, publisher)
	p.pollAll(context.Background())

	state := publisher.bySource(domain.SourceRest)
	require.Len(t, state, 3)

	names := map[string]any{}
	for _, env := range state {
		assert.Equal(t, "EH123456", env.ChargerID)
		assert.Equal(t, domain.ResolveByName, env.Mode)
		assert.False(t, env.Batch)

		var reading map[string]any
		require.NoError(t, json.Unmarshal(env.Payload, &reading))
		assert.Equal(t, "2026-08-30T11:59:58Z", reading["timestamp"],
			"state readings should carry the snapshot's pulse time")
		names[reading["dataName"].(string)] = reading["value"]
	}
	assert.Equal(t, 7.36, names["totalPower"])
	assert.Equal(t, true, names["isOnline"])
}

func TestPoller_SessionHistoryBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		switch r.URL.Path {
		case "/api/chargers/EH123456/state":
			_, _ = w.Write([]byte(`{}`))
		default:
			_, _ = w.Write([]byte(`[
				{"id":9001,"chargerId":"EH123456","sessionEnergy":12.5,
				 "sessionStart":"2026-08-29T08:00:00Z","sessionEnd":"2026-08-29T10:30:00Z"},
				{"id":9002,"chargerId":"EH123456","sessionEnergy":3.1,
				 "sessionStart":"2026-08-30T11:00:00Z","sessionEnd":""}
			]`))
		}
	}))
	defer srv.Close()

	publisher := &capturingPublisher{}
	p := testPoller(t, srv.URL, publisher)
	p.pollAll(context.Background())

	history := publisher.bySource(domain.SourceRestHistory)
	require.Len(t, history, 1)

	env := history[0]
	assert.True(t, env.Batch)
	assert.Equal(t, domain.ResolveByID, env.Mode)

	var readings []map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &readings))
	require.Len(t, readings, 1, "in-progress sessions should be skipped")

	assert.Equal(t, "EH123456_9001_1787990400_121", readings[0]["id"])
	assert.Equal(t, 12.5, readings[0]["value"])
	assert.Equal(t, "2026-08-29T10:30:00Z", readings[0]["timestamp"])
}

func TestPoller_UnreachableAPIPublishesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	publisher := &capturingPublisher{}
	p := testPoller(t, srv.URL, publisher)
	p.pollAll(context.Background())

	assert.Empty(t, publisher.envelopes)
}
