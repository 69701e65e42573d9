package upcitemdb

import "github.com/stockroom/backend/internal/domain"

// lookupResponse is the top-level UPCitemdb response shape
type lookupResponse struct {
	Code  string    `json:"code"`
	Total int       `json:"total"`
	Items []rawItem `json:"items"`
}

// rawItem carries every field name UPCitemdb uses for logically equivalent
// data. Several alternate identifiers (mpn, asin, part_number) can appear on
// the same item; the mapper picks them in a fixed order.
type rawItem struct {
	Title        string   `json:"title"`
	Brand        string   `json:"brand"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	MPN          string   `json:"mpn"`
	ASIN         string   `json:"asin"`
	PartNumber   string   `json:"part_number"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Images       []string `json:"images"`
}

// MapToProductRecord normalizes the first UPCitemdb item into the canonical
// record. The model precedence is model > mpn > asin > part_number; the field
// is normalized to "" when none is present. An empty items slice maps to nil.
func MapToProductRecord(upc string, items []rawItem) *domain.ProductRecord {
	if len(items) == 0 {
		return nil
	}
	item := items[0]

	imageURL := ""
	if len(item.Images) > 0 {
		imageURL = item.Images[0]
	}

	return &domain.ProductRecord{
		UPC:         upc,
		Title:       item.Title,
		Brand:       firstNonEmpty(item.Brand, item.Manufacturer),
		Model:       firstNonEmpty(item.Model, item.MPN, item.ASIN, item.PartNumber),
		Description: item.Description,
		ImageURL:    imageURL,
		Category:    item.Category,
	}
}

// firstNonEmpty returns the first non-empty string in candidates
func firstNonEmpty(candidates ...string) string {
	for _, s := range candidates {
		if s != "" {
			return s
		}
	}
	return ""
}
