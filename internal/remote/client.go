package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lessons/internal/domain"
)

// Client is a domain.DocumentSaver backed by the remote authoring
// service's auto-save endpoint:
//
//	PUT {base}/session/{sessionID}/nodes/{nodeID}/auto-save
//
// Any transport failure, timeout, non-2xx response, or non-"saved" status
// body is reported as a plain error; the scheduler folds it into the
// Failed save state.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ domain.DocumentSaver = (*Client)(nil)

// NewClient creates a client for baseURL. timeout bounds each call; zero
// means 10 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type saveResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// SaveDocument uploads the serialized document.
func (c *Client) SaveDocument(ctx context.Context, sessionID, nodeID string, doc domain.SerializedDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	url := fmt.Sprintf("%s/session/%s/nodes/%s/auto-save", c.baseURL, sessionID, nodeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("save request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("save request: status %d", resp.StatusCode)
	}

	var out saveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode save response: %w", err)
	}
	if out.Status != "saved" {
		if out.Detail != "" {
			return fmt.Errorf("remote rejected save: %s", out.Detail)
		}
		return fmt.Errorf("remote rejected save: status %q", out.Status)
	}
	return nil
}
