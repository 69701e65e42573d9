package usecase

import (
	"fmt"
	"strings"

	"github.com/stockroom/backend/internal/domain"
)

const (
	minBarcodeLength = 12
	maxBarcodeLength = 14
)

// SanitizeBarcode strips every non-digit character from raw and validates
// that the remainder is a plausible UPC/EAN code (12 to 14 digits). It is a
// pure function and idempotent: sanitizing an already-sanitized code returns
// it unchanged.
func SanitizeBarcode(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	sanitized := b.String()

	if sanitized == "" {
		return "", fmt.Errorf("%w: no digits in input", domain.ErrInvalidBarcode)
	}
	if len(sanitized) < minBarcodeLength || len(sanitized) > maxBarcodeLength {
		return "", fmt.Errorf("%w: got %d digits, want %d-%d",
			domain.ErrInvalidBarcode, len(sanitized), minBarcodeLength, maxBarcodeLength)
	}

	return sanitized, nil
}
