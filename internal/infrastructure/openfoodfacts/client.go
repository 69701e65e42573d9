package openfoodfacts

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

// Client queries the Open Food Facts database, the free tertiary source in
// the lookup chain. It covers food products only and is always queried last.
// There is no authenticated mode.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
}

// NewClient creates a new Open Food Facts API client
func NewClient(baseURL string) *Client {
	// Open Food Facts asks API consumers to stay under 100 req/min
	limiter := rate.NewLimiter(rate.Limit(1), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// Name identifies the provider in logs and lookup diagnostics
func (c *Client) Name() string {
	return "openfoodfacts"
}

// Enabled always reports true: the database is open
func (c *Client) Enabled() bool {
	return true
}

// Lookup resolves a sanitized barcode against Open Food Facts
func (c *Client) Lookup(ctx context.Context, upc string) (*domain.ProductRecord, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(upc))

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
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNoMatch
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		log.Printf("[OPENFOODFACTS] unexpected status %d for upc %s: %s", resp.StatusCode, upc, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var lookupResp lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookupResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// status 0 with a 200 response means the code is not in the database
	if lookupResp.Status != 1 {
		return nil, domain.ErrNoMatch
	}

	record := MapToProductRecord(upc, lookupResp.Product)
	if record == nil {
		return nil, domain.ErrNoMatch
	}

	return record, nil
}
