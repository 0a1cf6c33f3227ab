package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxBodyBytes caps how much of an upstream response we will read.  A
// programme feed measured in megabytes is a parser bug or a redesigned
// site, not a bigger programme.
const maxBodyBytes = 4 << 20

// Client is the shared outbound HTTP client all strategies use.  It paces
// requests per upstream host and sets a stable, honest User-Agent so venue
// operators can identify (and whitelist) the crawler.
type Client struct {
	http      *http.Client
	pacer     *Pacer
	userAgent string
}

// NewClient constructs a Client.  pacer may be nil to disable pacing.
func NewClient(pacer *Pacer) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		pacer:     pacer,
		userAgent: "filmbill-scraper/1.0 (+https://www.filmbill.co.uk/crawler)",
	}
}

// Get fetches a URL and returns the response body.  The per-host pacer is
// consulted before the request goes out; a non-2xx status is an error.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if err := c.pacer.Wait(ctx, u.Hostname()); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain;q=0.9, */*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", rawURL, err)
	}
	return body, nil
}

// GetJSON fetches a URL and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("GET %s: decode json: %w", rawURL, err)
	}
	return nil
}
