// Package api implements the REST client for the marketplace backend. It is
// the only place transport errors, HTTP status codes, and response envelopes
// are translated into domain outcomes; services above it never see raw HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmalink/portal-client/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client talks to the marketplace REST API. It implements ports.SessionAPI,
// ports.WorkflowAPI, and ports.NotificationAPI.
type Client struct {
	http    *http.Client
	baseURL string
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// NewClientWithTransport injects a RoundTripper, for tests.
func NewClientWithTransport(baseURL string, tr http.RoundTripper, log zerolog.Logger) *Client {
	c := NewClient(baseURL, defaultTimeout, log)
	c.http.Transport = tr
	return c
}

// HTTPError is a non-2xx response that does not map to a domain sentinel.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("marketplace api: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("marketplace api: status=%d body=%s", e.StatusCode, e.Body)
}

// envelope is the backend's canonical response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// doJSON performs one round-trip. A non-empty token is sent as a bearer
// credential. out, when non-nil, is decoded from the envelope's data field.
func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marketplace api: marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("marketplace api: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("marketplace request")

	if resp.StatusCode == http.StatusUnauthorized {
		return domain.ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("marketplace api: decode envelope: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("marketplace api: request rejected: %s", env.Message)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("marketplace api: decode data: %w", err)
	}
	return nil
}
