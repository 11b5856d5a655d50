// Package market collects market data from Financial Modeling Prep, with a
// headless-browser fallback for headlines when the API yields nothing.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://financialmodelingprep.com"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxAttempts = 3
	baseDelay   = time.Second
)

// ErrNoAPIKey is returned by collectors that cannot run without an FMP key.
var ErrNoAPIKey = errors.New("market: FMP API key not configured")

// Client talks to the Financial Modeling Prep API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient returns a Client. An empty apiKey is allowed: every call then
// fails with ErrNoAPIKey and the caller degrades to empty sections.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// getJSON fetches path with the API key attached and decodes the body into
// dst, retrying with exponential backoff on transport and 5xx errors.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", c.apiKey)
	u := c.baseURL + path + "?" + query.Encode()

	body, err := c.getWithRetry(ctx, u, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("market: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) getWithRetry(ctx context.Context, u, name string) ([]byte, error) {
	var lastErr error
	delay := baseDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, retryable, err := c.get(ctx, u, name)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}

		if attempt < maxAttempts {
			c.logger.Warn("market: request failed, retrying",
				"source", name, "attempt", attempt, "backoff", delay, "err", err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}
	}
	return nil, fmt.Errorf("market: %s failed after %d attempts: %w", name, maxAttempts, lastErr)
}

// get performs one request. The second return value reports whether the
// failure is worth retrying.
func (c *Client) get(ctx context.Context, u, name string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("market: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("market: %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("market: read %s: %w", name, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusForbidden:
		// Endpoint not included in the FMP subscription tier; retrying won't help.
		return nil, false, fmt.Errorf("market: %s: status 403 (not available on this plan)", name)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("market: %s: rate limited (429)", name)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("market: %s: status %d", name, resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("market: %s: status %d: %s", name, resp.StatusCode, truncate(string(body), 200))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
