// Package api is the portal's client for the learning-platform REST API.
// Every feature in this repository is a thin orchestration over these calls;
// the remote service owns all business logic and is the only authority on
// authorization. Responses are classified into a decoded payload, an
// *AuthError (expired/invalid credential) or a *StatusError carrying the
// human-readable detail the service provided.
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

const apiPrefix = "/api/v1"

// Client issues requests against a single API base URL. The zero value is
// not usable; construct with New.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

// New returns a Client for the given base URL (scheme://host, no trailing
// slash required).
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 8 * time.Second},
		UserAgent:  "ldsaas-portal/1.0",
	}
}

func (c *Client) url(path string) string {
	return c.BaseURL + apiPrefix + path
}

// do performs a request, optionally attaching a bearer token, and returns
// the raw response. Transport failures come back wrapped; classification of
// non-2xx statuses happens in decode / check.
func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

// getJSON issues an authenticated GET and decodes the 200 body into target.
func (c *Client) getJSON(ctx context.Context, path, token string, target any) error {
	resp, err := c.do(ctx, http.MethodGet, path, token, nil, "")
	if err != nil {
		return err
	}
	return decode(resp, target)
}

// postJSON issues a POST with an optional JSON payload, decoding into target
// when target is non-nil.
func (c *Client) postJSON(ctx context.Context, path, token string, payload, target any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	resp, err := c.do(ctx, http.MethodPost, path, token, body, contentType)
	if err != nil {
		return err
	}
	if target == nil {
		return check(resp)
	}
	return decode(resp, target)
}

// decode reads the response, classifies non-2xx statuses into typed errors
// and unmarshals success bodies into target.
func decode(resp *http.Response, target any) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := classify(resp.StatusCode, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// check drains the response and classifies the status, ignoring any success
// body.
func check(resp *http.Response) error {
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return classify(resp.StatusCode, raw)
}
