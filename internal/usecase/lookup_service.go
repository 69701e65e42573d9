package usecase

import (
	"context"
	"log"
	"time"

	"github.com/stockroom/backend/internal/domain"
)

// LookupService is the caller-facing entry point for product resolution.
// Flow: sanitize -> check cache -> run provider chain -> cache -> return.
// The cache sits outside the chain: a cached record short-circuits the
// providers entirely, and not-found outcomes are never cached so a product
// added to a provider later is picked up on the next scan.
type LookupService struct {
	resolver *Resolver
	cache    domain.ProductCache
	cacheTTL time.Duration
}

// NewLookupService creates a lookup service. cache may be nil to disable
// caching (the dev CLI does this).
func NewLookupService(resolver *Resolver, cache domain.ProductCache, cacheTTL time.Duration) *LookupService {
	if cacheTTL == 0 {
		cacheTTL = 168 * time.Hour // Default 7 days
	}
	return &LookupService{
		resolver: resolver,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Lookup resolves a raw barcode to a canonical product record. It returns
// domain.ErrInvalidBarcode for inputs that fail sanitization and
// domain.ErrNoMatch when every provider was exhausted.
func (s *LookupService) Lookup(ctx context.Context, raw string) (*domain.ProductRecord, error) {
	upc, err := SanitizeBarcode(raw)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, upc); err == nil && cached != nil {
			return cached, nil
		}
	}

	record, err := s.resolver.Resolve(ctx, upc)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, upc, record, s.cacheTTL); err != nil {
			// Caching is best-effort
			log.Printf("[LOOKUP] failed to cache record for upc %s: %v", upc, err)
		}
	}

	return record, nil
}
