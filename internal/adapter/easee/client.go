package easee

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
)

// Client talks to the Easee cloud REST API. It is the polling-side
// counterpart to the streaming hub: charger state snapshots, session
// histories, and site metadata all come from here.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an Easee cloud API client.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// ChargerState fetches the current state snapshot for a charger. The
// response is a flat object keyed by field name, which is exactly the
// shape the name-mode resolver expects.
func (c *Client) ChargerState(ctx context.Context, chargerID string) (map[string]any, error) {
	u := fmt.Sprintf("%s/api/chargers/%s/state", c.baseURL, url.PathEscape(chargerID))

	var state map[string]any
	if err := c.doRequest(ctx, u, "state", &state); err != nil {
		return nil, err
	}
	return state, nil
}

// Sessions fetches the most recent charging sessions for a charger,
// newest first.
func (c *Client) Sessions(ctx context.Context, chargerID string, limit int) ([]Session, error) {
	u := fmt.Sprintf("%s/api/sessions/charger/%s/sessions/descending?limit=%d",
		c.baseURL, url.PathEscape(chargerID), limit)

	var sessions []Session
	if err := c.doRequest(ctx, u, "sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ResolveSite implements domain.SiteResolver by fetching the site a
// charger belongs to and locating the charger within its circuits.
func (c *Client) ResolveSite(ctx context.Context, chargerID string) (domain.SiteInfo, error) {
	u := fmt.Sprintf("%s/api/chargers/%s/site", c.baseURL, url.PathEscape(chargerID))

	var site siteResponse
	if err := c.doRequest(ctx, u, "site", &site); err != nil {
		return domain.SiteInfo{}, err
	}

	info := domain.SiteInfo{SiteID: strconv.Itoa(site.ID)}
	for _, circuit := range site.Circuits {
		for _, charger := range circuit.Chargers {
			if charger.ID == chargerID {
				info.CircuitID = strconv.Itoa(circuit.ID)
				info.ChargerName = charger.Name
				return info, nil
			}
		}
	}
	// Site found but the charger is not listed on any circuit. Keep the
	// site id; circuit and name stay empty.
	return info, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, operation string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("easee API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// Session is one completed or in-progress charging session as returned
// by the sessions endpoint.
type Session struct {
	ID            int64   `json:"id"`
	ChargerID     string  `json:"chargerId"`
	SessionEnergy float64 `json:"sessionEnergy"`
	SessionStart  string  `json:"sessionStart"`
	SessionEnd    string  `json:"sessionEnd"`
}

// Easee site API response types.

type siteResponse struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Circuits []siteCircuit `json:"circuits"`
}

type siteCircuit struct {
	ID       int           `json:"id"`
	Chargers []siteCharger `json:"chargers"`
}

type siteCharger struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
