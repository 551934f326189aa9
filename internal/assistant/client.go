// Package assistant calls the external text-completion service that powers
// the chat assistant's real replies.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is an HTTP client for the text-completion endpoint.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a completion client for the given endpoint URL.
func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type request struct {
	Message string `json:"message"`
}

type response struct {
	Response string `json:"response"`
}

// Respond sends the user's message and returns the assistant's reply text.
// The hasImage flag exists to satisfy the chat responder contract; the text
// endpoint has no use for it.
func (c *Client) Respond(ctx context.Context, message string, hasImage bool) (string, error) {
	body, err := json.Marshal(request{Message: message})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if apiResp.Response == "" {
		return "", fmt.Errorf("empty completion response")
	}

	return apiResp.Response, nil
}
