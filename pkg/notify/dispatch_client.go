package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DispatchConfig holds configuration for the dispatcher endpoint.
type DispatchConfig struct {
	APIURL string
	APIKey string
}

// DispatchClient posts messages to the notification dispatcher over HTTP.
type DispatchClient struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewDispatchClient creates a dispatcher client.
func NewDispatchClient(cfg DispatchConfig) *DispatchClient {
	return &DispatchClient{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type dispatchResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// Send posts the message to the dispatcher. A non-accepted answer is an
// error; the caller decides whether that failure matters.
func (c *DispatchClient) Send(msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call notification dispatcher: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read dispatcher response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("dispatcher returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed dispatchResponse
	if err := json.Unmarshal(respBody, &parsed); err == nil && parsed.Status != "" && parsed.Status != "accepted" && parsed.Status != "ok" {
		return fmt.Errorf("dispatcher rejected message: %s", parsed.Comment)
	}

	return nil
}
