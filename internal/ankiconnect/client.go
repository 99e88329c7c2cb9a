// Package ankiconnect talks to the AnkiConnect add-on over its HTTP
// JSON-RPC interface.
package ankiconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/snonux/ankismart/internal/httpx"
)

const (
	// DefaultURL is where AnkiConnect listens unless reconfigured
	DefaultURL = "http://localhost:8765"

	apiVersion = 6
)

// Config holds the bridge client settings
type Config struct {
	URL       string
	Timeout   time.Duration
	Transport http.RoundTripper
	Retry     httpx.RetryPolicy
}

// Client issues AnkiConnect actions over one owned HTTP session
type Client struct {
	url      string
	sessions *httpx.SessionManager
}

// New creates a bridge client; the session is opened on first use
func New(cfg Config) *Client {
	url := cfg.URL
	if url == "" {
		url = DefaultURL
	}

	return &Client{
		url: url,
		sessions: httpx.NewSessionManager(httpx.Options{
			Name:      "ankiconnect",
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
			Retry:     cfg.Retry,
		}),
	}
}

// URL returns the bridge endpoint
func (c *Client) URL() string {
	return c.url
}

// Close releases the HTTP session
func (c *Client) Close() {
	c.sessions.Release()
}

type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

// invoke sends one action and decodes its result into out (which may be nil)
func (c *Client) invoke(ctx context.Context, action string, params, out any) error {
	session, err := c.sessions.Acquire(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(request{Action: action, Version: apiVersion, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	slog.Debug("ankiconnect request", slog.String("action", action))

	resp, err := session.Post(ctx, c.url, "application/json", payload)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", action, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &ProtocolError{Action: action, Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	result, err := decodeEnvelope(action, body)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return &ProtocolError{Action: action, Reason: fmt.Sprintf("unexpected result: %v", err)}
	}
	return nil
}

// decodeEnvelope checks the {"result", "error"} shape and returns the raw result
func decodeEnvelope(action string, body []byte) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &ProtocolError{Action: action, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	result, hasResult := envelope["result"]
	rawErr, hasError := envelope["error"]
	if len(envelope) != 2 || !hasResult || !hasError {
		return nil, &ProtocolError{Action: action, Reason: "response must have exactly the fields result and error"}
	}

	if !bytes.Equal(bytes.TrimSpace(rawErr), []byte("null")) {
		var message string
		if err := json.Unmarshal(rawErr, &message); err != nil {
			message = string(rawErr)
		}
		return nil, newBridgeError(action, message)
	}

	return result, nil
}
