package upcitemdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/stockroom/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client queries the UPCitemdb product database, the secondary source in the
// lookup chain. Without an API key it uses the rate-limited trial endpoint;
// with one it uses the authenticated endpoint. Normalization is identical in
// both modes.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
}

// NewClient creates a new UPCitemdb API client
func NewClient(apiKey, baseURL string) *Client {
	// The trial tier allows 100 requests/day; authenticated plans are much
	// higher. 0.2/sec keeps a burst of scans from tripping either tier.
	limiter := rate.NewLimiter(rate.Limit(0.2), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// Name identifies the provider in logs and lookup diagnostics
func (c *Client) Name() string {
	return "upcitemdb"
}

// Enabled always reports true: the trial endpoint needs no credential
func (c *Client) Enabled() bool {
	return true
}

// endpointMode returns the path segment for the active mode
func (c *Client) endpointMode() string {
	if c.apiKey != "" {
		return "v1"
	}
	return "trial"
}

// Lookup resolves a sanitized barcode against UPCitemdb
func (c *Client) Lookup(ctx context.Context, upc string) (*domain.ProductRecord, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	params := url.Values{}
	params.Add("upc", upc)
	reqURL := fmt.Sprintf("%s/prod/%s/lookup?%s", c.baseURL, c.endpointMode(), params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("user_key", c.apiKey)
		req.Header.Set("key_type", "3scale")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNoMatch
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		log.Printf("[UPCITEMDB] unexpected status %d for upc %s: %s", resp.StatusCode, upc, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var lookupResp lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookupResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// An empty items array is a valid 200 response meaning "no data"
	record := MapToProductRecord(upc, lookupResp.Items)
	if record == nil {
		return nil, domain.ErrNoMatch
	}

	return record, nil
}
