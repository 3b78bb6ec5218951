// Package warehouse talks to the Snowflake SQL REST API using a bearer
// token obtained from the OAuth authenticator.
package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// TokenProvider supplies a bearer token for API calls. *auth.Authenticator
// satisfies this interface.
type TokenProvider interface {
	GetToken(ctx context.Context, forceRefresh bool) (string, error)
}

// Client is a Snowflake SQL REST API client.
type Client struct {
	baseURL   *url.URL
	role      string
	warehouse string
	database  string
	schema    string
	userAgent string
	http      *http.Client
	tokens    TokenProvider
	log       *slog.Logger
}

// APIError represents a non-2xx HTTP response from the Snowflake API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Options holds the session context for statements issued by the client.
type Options struct {
	Account   string
	Role      string
	Warehouse string
	Database  string
	Schema    string
	Debug     bool
}

// discardLogger returns a slog.Logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewClient constructs a Client for the given account and session options.
// If the environment variable SNOWFLAKE_OAUTH_BASE_URL is set, it overrides
// the computed Snowflake endpoint, which is useful for testing against a
// mock HTTP server.
func NewClient(opts Options, tokens TokenProvider) (*Client, error) {
	if opts.Account == "" {
		return nil, fmt.Errorf("SNOWFLAKE_ACCOUNT is required")
	}
	rawURL := fmt.Sprintf("https://%s.snowflakecomputing.com", opts.Account)
	if override := os.Getenv("SNOWFLAKE_OAUTH_BASE_URL"); override != "" {
		rawURL = override
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var log *slog.Logger
	if opts.Debug {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		log = discardLogger()
	}

	return &Client{
		baseURL:   base,
		role:      strings.ToUpper(strings.TrimSpace(opts.Role)),
		warehouse: opts.Warehouse,
		database:  opts.Database,
		schema:    opts.Schema,
		userAgent: "snowflake-oauth-test",
		http:      &http.Client{Timeout: 60 * time.Second},
		tokens:    tokens,
		log:       log,
	}, nil
}

// NewClientForTest creates a Client pointing at the given base URL.
// Intended for use in tests against mock HTTP servers.
func NewClientForTest(base *url.URL, opts Options, tokens TokenProvider) *Client {
	return &Client{
		baseURL:   base,
		role:      strings.ToUpper(strings.TrimSpace(opts.Role)),
		warehouse: opts.Warehouse,
		database:  opts.Database,
		schema:    opts.Schema,
		userAgent: "test",
		http:      &http.Client{Timeout: 30 * time.Second},
		tokens:    tokens,
		log:       discardLogger(),
	}
}

func (c *Client) doJSON(ctx context.Context, method, urlStr string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	token, err := c.tokens.GetToken(ctx, false)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Snowflake-Authorization-Token-Type", "OAUTH")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.role != "" {
		req.Header.Set("X-Snowflake-Role", c.role)
	}

	c.log.Debug("request", "method", method, "url", urlStr)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	c.log.Debug("response", "status", resp.StatusCode)

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
