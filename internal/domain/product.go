package domain

// ProductRecord is the canonical product representation produced by the
// lookup chain. Every provider's raw response is normalized into this shape
// before it reaches callers or storage. UPC is always populated and echoes
// the sanitized input; the remaining fields are empty when no provider field
// mapped to them, except Model which is normalized to "" rather than omitted.
type ProductRecord struct {
	UPC         string `json:"upc"`
	Title       string `json:"title,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Model       string `json:"model"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Category    string `json:"category,omitempty"`
}

// LookupRequest is the payload of the product lookup endpoint
type LookupRequest struct {
	UPC string `json:"upc" binding:"required"`
}
