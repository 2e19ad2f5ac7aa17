package easee

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
)

// sessionEnergyID is the catalogue id the flattened session history
// readings report under.
const sessionEnergyID = 121

// Publisher accepts raw reading envelopes for downstream normalization.
type Publisher interface {
	Publish(ctx context.Context, env domain.RawReadingEnvelope) error
}

// Poller periodically fetches charger state snapshots and session
// histories over REST and publishes them as raw reading envelopes. It
// covers chargers that never connect to the streaming hub and backfills
// history the hub does not replay.
type Poller struct {
	client       *Client
	publisher    Publisher
	chargerIDs   []string
	interval     time.Duration
	sessionLimit int
	clock        clockwork.Clock
	logger       *slog.Logger
}

// NewPoller creates a REST poller for the given chargers.
func NewPoller(client *Client, publisher Publisher, chargerIDs []string, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		client:       client,
		publisher:    publisher,
		chargerIDs:   chargerIDs,
		interval:     interval,
		sessionLimit: 10,
		clock:        clockwork.NewRealClock(),
		logger:       logger,
	}
}

// Run polls immediately, then on every interval tick until the context is
// cancelled. Per-charger failures are logged and skipped; one unreachable
// charger must not starve the rest.
func (p *Poller) Run(ctx context.Context) error {
	p.pollAll(ctx)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			p.pollAll(ctx)
		}
	}
}

func (p *Poller) pollAll(ctx context.Context) {
	for _, chargerID := range p.chargerIDs {
		if ctx.Err() != nil {
			return
		}
		if err := p.pollState(ctx, chargerID); err != nil {
			p.logger.Warn("state poll failed", "charger_id", chargerID, "error", err)
		}
		if err := p.pollSessions(ctx, chargerID); err != nil {
			p.logger.Warn("session poll failed", "charger_id", chargerID, "error", err)
		}
	}
}

// pollState flattens one state snapshot into per-field readings keyed by
// dataName, the shape name-mode resolution expects.
func (p *Poller) pollState(ctx context.Context, chargerID string) error {
	state, err := p.client.ChargerState(ctx, chargerID)
	if err != nil {
		return err
	}

	now := p.clock.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	if pulse, ok := state["latestPulse"].(string); ok && pulse != "" {
		timestamp = pulse
	}

	for field, value := range state {
		reading := map[string]any{
			"dataName":  field,
			"value":     value,
			"timestamp": timestamp,
		}
		payload, err := json.Marshal(reading)
		if err != nil {
			return fmt.Errorf("marshal state reading %q: %w", field, err)
		}
		env := domain.RawReadingEnvelope{
			ChargerID:  chargerID,
			Source:     domain.SourceRest,
			Mode:       domain.ResolveByName,
			Payload:    payload,
			ReceivedAt: now,
		}
		if err := p.publisher.Publish(ctx, env); err != nil {
			return err
		}
	}
	return nil
}

// pollSessions flattens recent completed sessions into composite-id
// readings and publishes them as one batch envelope per charger.
func (p *Poller) pollSessions(ctx context.Context, chargerID string) error {
	sessions, err := p.client.Sessions(ctx, chargerID, p.sessionLimit)
	if err != nil {
		return err
	}

	readings := make([]any, 0, len(sessions))
	for _, s := range sessions {
		if s.SessionEnd == "" {
			// Still charging; the energy total is not final yet.
			continue
		}
		start, err := time.Parse(time.RFC3339Nano, s.SessionStart)
		if err != nil {
			p.logger.Warn("unparseable session start",
				"charger_id", chargerID, "session_id", s.ID, "value", s.SessionStart)
			continue
		}
		readings = append(readings, map[string]any{
			"id":        fmt.Sprintf("%s_%d_%d_%d", chargerID, s.ID, start.Unix(), sessionEnergyID),
			"value":     s.SessionEnergy,
			"timestamp": s.SessionEnd,
		})
	}
	if len(readings) == 0 {
		return nil
	}

	payload, err := json.Marshal(readings)
	if err != nil {
		return fmt.Errorf("marshal session readings: %w", err)
	}
	env := domain.RawReadingEnvelope{
		ChargerID:  chargerID,
		Source:     domain.SourceRestHistory,
		Mode:       domain.ResolveByID,
		Batch:      true,
		Payload:    payload,
		ReceivedAt: p.clock.Now().UTC(),
	}
	return p.publisher.Publish(ctx, env)
}
