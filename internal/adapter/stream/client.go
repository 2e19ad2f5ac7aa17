package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
)

// SignalR JSON protocol framing. Every message is terminated by the
// record separator, including the initial handshake.
const recordSeparator = 0x1e

// SignalR message types used by the charger hub.
const (
	msgInvocation = 1
	msgPing       = 6
	msgClose      = 7
)

// Reconnect backoff bounds.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Publisher accepts raw reading envelopes for downstream normalization.
type Publisher interface {
	Publish(ctx context.Context, env domain.RawReadingEnvelope) error
}

// Client maintains a SignalR connection to the streaming hub, subscribes
// to the configured chargers, and publishes every ProductUpdate
// observation as a raw reading envelope.
type Client struct {
	hubURL     string
	token      string
	chargerIDs []string
	publisher  Publisher
	dialer     *websocket.Dialer
	logger     *slog.Logger
}

// NewClient creates a streaming hub client for the given chargers.
func NewClient(hubURL, token string, chargerIDs []string, publisher Publisher, logger *slog.Logger) *Client {
	return &Client{
		hubURL:     hubURL,
		token:      token,
		chargerIDs: chargerIDs,
		publisher:  publisher,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run connects and consumes until the context is cancelled, reconnecting
// with exponential backoff after connection failures.
func (c *Client) Run(ctx context.Context) error {
	backoff := initialBackoff

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.runConnection(ctx)
		if err == nil || ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Warn("streaming connection lost, reconnecting",
			"error", err,
			"backoff", backoff,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (c *Client) runConnection(ctx context.Context) error {
	header := http.Header{"Authorization": {"Bearer " + c.token}}
	conn, resp, err := c.dialer.DialContext(ctx, c.hubURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial hub: %w (status %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("dial hub: %w", err)
	}
	defer conn.Close()

	// Close the socket when the context is cancelled so the blocked read
	// below returns.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := c.handshake(conn); err != nil {
		return err
	}
	if err := c.subscribe(conn); err != nil {
		return err
	}
	c.logger.Info("streaming hub connected", "chargers", len(c.chargerIDs))

	return c.readLoop(ctx, conn)
}

// handshake negotiates the SignalR JSON protocol.
func (c *Client) handshake(conn *websocket.Conn) error {
	if err := writeFrame(conn, []byte(`{"protocol":"json","version":1}`)); err != nil {
		return fmt.Errorf("send handshake: %w", err)
	}

	frames, err := readFrames(conn)
	if err != nil {
		return fmt.Errorf("read handshake: %w", err)
	}
	var result struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(frames[0], &result); err != nil {
		return fmt.Errorf("decode handshake: %w", err)
	}
	if result.Error != "" {
		return fmt.Errorf("handshake rejected: %s", result.Error)
	}
	return nil
}

// subscribe asks the hub for the current state plus live updates of every
// configured charger.
func (c *Client) subscribe(conn *websocket.Conn) error {
	for _, chargerID := range c.chargerIDs {
		inv := hubMessage{
			Type:         msgInvocation,
			InvocationID: uuid.NewString(),
			Target:       "SubscribeWithCurrentState",
			Arguments:    []json.RawMessage{rawJSON(chargerID), []byte("true")},
		}
		payload, err := json.Marshal(inv)
		if err != nil {
			return fmt.Errorf("marshal subscription: %w", err)
		}
		if err := writeFrame(conn, payload); err != nil {
			return fmt.Errorf("subscribe %s: %w", chargerID, err)
		}
	}
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		frames, err := readFrames(conn)
		if err != nil {
			return fmt.Errorf("read hub message: %w", err)
		}
		for _, frame := range frames {
			if err := c.handleFrame(ctx, conn, frame); err != nil {
				return err
			}
		}
	}
}

func (c *Client) handleFrame(ctx context.Context, conn *websocket.Conn, frame []byte) error {
	var msg hubMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		c.logger.Warn("undecodable hub frame", "error", err)
		return nil
	}

	switch msg.Type {
	case msgPing:
		return writeFrame(conn, []byte(`{"type":6}`))
	case msgClose:
		return fmt.Errorf("hub closed connection: %s", msg.Error)
	case msgInvocation:
		if msg.Target != "ProductUpdate" {
			return nil
		}
		return c.publishObservations(ctx, msg.Arguments)
	default:
		return nil
	}
}

// publishObservations forwards each ProductUpdate argument verbatim. The
// observation payload is normalized downstream; only the charger id is
// peeked at here for envelope routing.
func (c *Client) publishObservations(ctx context.Context, args []json.RawMessage) error {
	for _, arg := range args {
		var routing struct {
			Mid string `json:"mid"`
		}
		if err := json.Unmarshal(arg, &routing); err != nil {
			c.logger.Warn("undecodable observation", "error", err)
			continue
		}

		env := domain.RawReadingEnvelope{
			ChargerID:  routing.Mid,
			Source:     domain.SourceStream,
			Mode:       domain.ResolveByID,
			Payload:    arg,
			ReceivedAt: time.Now().UTC(),
		}
		if err := c.publisher.Publish(ctx, env); err != nil {
			return err
		}
	}
	return nil
}

// hubMessage is the subset of the SignalR message envelope the hub uses.
type hubMessage struct {
	Type         int               `json:"type"`
	InvocationID string            `json:"invocationId,omitempty"`
	Target       string            `json:"target,omitempty"`
	Arguments    []json.RawMessage `json:"arguments,omitempty"`
	Error        string            `json:"error,omitempty"`
}

func rawJSON(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}

func writeFrame(conn *websocket.Conn, payload []byte) error {
	return conn.WriteMessage(websocket.TextMessage, append(payload, recordSeparator))
}

// readFrames reads one websocket message and splits it into the SignalR
// frames it carries.
func readFrames(conn *websocket.Conn) ([][]byte, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	parts := bytes.Split(data, []byte{recordSeparator})
	frames := make([][]byte, 0, len(parts))
	for _, part := range parts {
		if len(part) > 0 {
			frames = append(frames, part)
		}
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("empty hub message")
	}
	return frames, nil
}
