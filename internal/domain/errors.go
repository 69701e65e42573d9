package domain

import "errors"

var (
	// ErrInvalidBarcode is returned when a barcode fails sanitization rules
	ErrInvalidBarcode = errors.New("invalid barcode")

	// ErrNoMatch is returned when every provider has been tried and none matched
	ErrNoMatch = errors.New("no provider matched the barcode")

	// ErrProviderUnauthorized is returned by a provider client on HTTP 401/403
	ErrProviderUnauthorized = errors.New("provider rejected credentials")

	// ErrProviderFailure is returned by a provider client on any other failure
	ErrProviderFailure = errors.New("provider request failed")

	// ErrNotFound is returned when a stored document cannot be found
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrConflict is returned when an operation is not allowed in the
	// document's current state (e.g. receiving a cancelled purchase order)
	ErrConflict = errors.New("operation conflicts with current state")

	// ErrInsufficientStock is returned when a dispatch would drive a stock
	// level negative
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrUnauthenticated is returned when no caller identity is present
	ErrUnauthenticated = errors.New("caller is not authenticated")

	// ErrEmailUnverified is returned when the caller identity exists but the
	// email address has not been verified
	ErrEmailUnverified = errors.New("caller email is not verified")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
