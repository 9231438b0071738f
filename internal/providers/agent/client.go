// Package agent wraps the hosted agent endpoint behind a stateless
// request/response client. Each call is independent; conversation threading
// happens only through the caller-supplied parent id.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ehlvg/tg-agent/internal/core"
)

var (
	// ErrTimeout means the provider did not answer within the configured
	// deadline. Distinct wording so transports can tell the user apart
	// from a generic failure.
	ErrTimeout = errors.New("request timed out, please try again")

	// ErrRequestFailed covers every other transport or non-2xx failure.
	ErrRequestFailed = errors.New("failed to get response from agent")
)

// noResponsePlaceholder stands in for a missing message field. The upstream
// schema is loose, absent fields are tolerated rather than rejected.
const noResponsePlaceholder = "No response"

type Client struct {
	client   *http.Client
	baseURL  string
	accessID string
}

func NewClient(accessID, baseURL string, timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:  baseURL,
		accessID: accessID,
	}
}

type callRequest struct {
	Message         string `json:"message"`
	ParentMessageID string `json:"parent_message_id,omitempty"`
}

type callResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Call sends message to the agent endpoint, threading parentID when present.
// Returns the reply text and the provider-assigned reply id. No retries on
// failure; the error propagates immediately.
func (c *Client) Call(ctx context.Context, message, parentID string) (string, string, error) {
	payload := callRequest{
		Message:         message,
		ParentMessageID: parentID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("marshal: %w", err)
	}

	url := fmt.Sprintf("%s/agents/%s/call", c.baseURL, c.accessID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.AppName+"/"+core.AppVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", "", fmt.Errorf("%w (after %s)", ErrTimeout, c.client.Timeout)
		}
		return "", "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("%w: read body: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", "", fmt.Errorf("%w: http %d: %s", ErrRequestFailed, resp.StatusCode, body)
	}

	var parsed callResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", "", fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
	}

	if parsed.Message == "" {
		parsed.Message = noResponsePlaceholder
	}
	return parsed.Message, parsed.ID, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
