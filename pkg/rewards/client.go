// Package rewards integrates with the Photon attribution API. Crediting is
// best-effort: the payment path never fails because Photon is down.
package rewards

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Event is the attribution payload sent to Photon.
type Event struct {
	// EventID deduplicates deliveries on the Photon side.
	EventID      string         `json:"event_id"`
	ClientUserID string         `json:"client_user_id"`
	CampaignID   string         `json:"campaign_id"`
	EventType    string         `json:"event_type"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Timestamp    int64          `json:"timestamp"`
}

// Client sends attribution events to the rewards upstream.
type Client interface {
	// SendEvent delivers one event and returns the raw upstream response
	// body, which is stored verbatim in the user's reward history.
	SendEvent(ctx context.Context, ev *Event) (json.RawMessage, error)
}

type httpClient struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewClient creates a Photon API client.
func NewClient(apiURL, apiKey string, timeout time.Duration) Client {
	return &httpClient{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) SendEvent(ctx context.Context, ev *Event) (json.RawMessage, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rewards request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read rewards response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rewards API returned status %d: %s", resp.StatusCode, respBody)
	}

	if len(respBody) == 0 || !json.Valid(respBody) {
		return nil, nil
	}
	return json.RawMessage(respBody), nil
}
