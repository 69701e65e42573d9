package goupc

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

// Client queries the Go-UPC product database, the primary (paid) source in
// the lookup chain. It is only consulted when an API key is configured.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
}

// NewClient creates a new Go-UPC API client
func NewClient(apiKey, baseURL string) *Client {
	// The paid plan allows sustained traffic; keep a conservative ceiling
	// so a misbehaving caller cannot burn through the quota.
	limiter := rate.NewLimiter(rate.Limit(5), 10)

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
	return "goupc"
}

// Enabled reports whether the provider should be consulted. Without a key
// the chain skips Go-UPC entirely, no request is made.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Lookup resolves a sanitized barcode against Go-UPC
func (c *Client) Lookup(ctx context.Context, upc string) (*domain.ProductRecord, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	params := url.Values{}
	params.Add("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/api/v1/code/%s?%s", c.baseURL, url.PathEscape(upc), params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

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
		log.Printf("[GOUPC] unexpected status %d for upc %s: %s", resp.StatusCode, upc, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var lookupResp lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookupResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	record := MapToProductRecord(upc, lookupResp.Product)
	if record == nil {
		return nil, domain.ErrNoMatch
	}

	return record, nil
}
