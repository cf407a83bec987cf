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
)

// SecretHeader carries the admin secret on every authenticated call.
const SecretHeader = "x-qore-engine-admin-secret"

// Client talks to one Qore engine with one admin secret.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

// NewClient returns a client for the engine at baseURL. An optional positive
// timeout replaces DefaultTimeout.
func NewClient(baseURL, secret string, timeout ...time.Duration) *Client {
	limit := DefaultTimeout
	for _, t := range timeout {
		if t > 0 {
			limit = t
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secret:     secret,
		httpClient: &http.Client{Timeout: limit},
	}
}

// WithTimeout returns a copy of c with another request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	return NewClient(c.baseURL, c.secret, timeout)
}

// BaseURL is the engine root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// StatusError reports an engine reply with a 4xx or 5xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.call(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	return c.call(ctx, http.MethodPost, path, payload)
}

// call sends payload as JSON, when present, and returns the reply body.
func (c *Client) call(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	data, _, err := c.send(req)
	return data, err
}

func (c *Client) authorize(req *http.Request) {
	if c.secret != "" {
		req.Header.Set(SecretHeader, c.secret)
	}
}

// send runs req and turns error statuses into *StatusError.
func (c *Client) send(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusBadRequest {
		return data, resp.StatusCode, nil
	}

	msg, ok := errorMessage(data)
	if !ok {
		msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil, resp.StatusCode, &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

func decodeOne[T any](data []byte) (*T, error) {
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// errorEnvelope covers the shapes the engine and its proxies use for error
// bodies. Each field is either a string or an object.
type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message json.RawMessage `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

type engineError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// errorMessage pulls a readable message out of an error reply body.
func errorMessage(body []byte) (string, bool) {
	var env errorEnvelope
	if len(body) == 0 || json.Unmarshal(body, &env) != nil {
		return "", false
	}
	for _, raw := range []json.RawMessage{env.Error, env.Message, env.Detail} {
		if msg, ok := errorText(raw); ok {
			return msg, true
		}
	}
	return "", false
}

func errorText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var text string
	if json.Unmarshal(raw, &text) == nil {
		text = strings.TrimSpace(text)
		return text, text != ""
	}

	var e engineError
	if json.Unmarshal(raw, &e) != nil {
		return "", false
	}
	if msg, ok := errorText(e.Error); ok {
		return msg, true
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{e.Code, e.Message} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ": "), len(parts) > 0
}
