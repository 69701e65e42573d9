package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/stockroom/backend/internal/domain"
)

// Resolver runs a sanitized barcode through an ordered chain of product-data
// providers and returns the first normalized record. Providers are tried
// strictly in the order given to NewResolver, which encodes data quality and
// cost: the paid comprehensive source first, the freemium source second, the
// free food-only source last. The order never changes at runtime.
//
// Every per-provider failure (network error, timeout, credential rejection,
// unexpected status, or a success response without a usable payload) is
// logged and absorbed; the chain simply advances. Only chain exhaustion
// surfaces, as domain.ErrNoMatch.
type Resolver struct {
	providers []domain.Provider
	timeout   time.Duration
}

// NewResolver creates a resolver over the given provider chain. A
// non-positive timeout falls back to 10 seconds per provider call.
func NewResolver(providers []domain.Provider, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		providers: providers,
		timeout:   timeout,
	}
}

// Resolve tries each provider in order and returns the first record whose
// response normalized to a non-nil ProductRecord. The input must already be
// sanitized. Returns domain.ErrNoMatch when the chain is exhausted.
func (r *Resolver) Resolve(ctx context.Context, upc string) (*domain.ProductRecord, error) {
	for _, provider := range r.providers {
		if !provider.Enabled() {
			log.Printf("[LOOKUP] provider %s not configured, skipping", provider.Name())
			continue
		}

		record, err := r.tryProvider(ctx, provider, upc)
		if err == nil {
			log.Printf("[LOOKUP] provider %s matched upc %s", provider.Name(), upc)
			return record, nil
		}

		switch {
		case errors.Is(err, domain.ErrNoMatch):
			log.Printf("[LOOKUP] provider %s had no data for upc %s", provider.Name(), upc)
		case errors.Is(err, domain.ErrProviderUnauthorized):
			// Operator-facing: the configured credential is being rejected
			log.Printf("[LOOKUP] WARNING: provider %s rejected credentials for upc %s: %v", provider.Name(), upc, err)
		case errors.Is(err, context.Canceled):
			// The caller went away; no point trying further providers
			return nil, err
		default:
			log.Printf("[LOOKUP] provider %s failed for upc %s: %v", provider.Name(), upc, err)
		}
	}

	return nil, domain.ErrNoMatch
}

// tryProvider bounds a single provider call with the per-provider timeout.
// A timeout cancels only this provider's request, never the whole chain.
func (r *Resolver) tryProvider(ctx context.Context, provider domain.Provider, upc string) (*domain.ProductRecord, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	record, err := provider.Lookup(callCtx, upc)
	if err != nil {
		return nil, err
	}
	if record == nil {
		// A provider returning (nil, nil) is a contract violation; treat it
		// like an empty payload
		return nil, domain.ErrNoMatch
	}
	return record, nil
}
