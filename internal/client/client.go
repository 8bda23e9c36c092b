// Package client talks to the leaderboard from game hosts, either over HTTP
// or in-process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Garsondee/clout-chase/internal/sim"
)

// StatusError is a non-2xx response other than 404.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("leaderboard: HTTP %d: %s", e.Code, e.Message)
}

// Client is the HTTP implementation of sim.Leaderboard.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// New returns a client for the server at baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ sim.Leaderboard = (*Client)(nil)

// EnsureUser registers or fetches username.
func (c *Client) EnsureUser(ctx context.Context, username string) (sim.User, error) {
	var u sim.User
	err := c.do(ctx, http.MethodPost, "/api/user", map[string]string{"username": username}, &u)
	return u, err
}

// RecordWin reports a win. An unknown user yields sim.ErrUserNotFound.
func (c *Client) RecordWin(ctx context.Context, username, rewardID string) (sim.User, error) {
	var u sim.User
	err := c.do(ctx, http.MethodPost, "/api/score", map[string]string{"username": username, "rewardId": rewardID}, &u)
	return u, err
}

// Leaderboard fetches the top ten.
func (c *Client) Leaderboard(ctx context.Context) ([]sim.Standing, error) {
	var rows []sim.Standing
	if err := c.do(ctx, http.MethodGet, "/api/leaderboard", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Ping checks that the server answers /test.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Message string `json:"message"`
	}
	return c.do(ctx, http.MethodGet, "/test", nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &env) != nil || env.Error == "" {
			env.Error = strings.TrimSpace(string(raw))
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", sim.ErrUserNotFound, env.Error)
		}
		return &StatusError{Code: resp.StatusCode, Message: env.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
