package goupc

import "github.com/stockroom/backend/internal/domain"

// lookupResponse is the top-level Go-UPC response shape. Product is nil when
// the code is unknown.
type lookupResponse struct {
	Code    string      `json:"code"`
	Product *rawProduct `json:"product"`
}

// rawProduct carries every field name Go-UPC has been observed to use for
// logically equivalent data. Absent and null fields both decode to "".
type rawProduct struct {
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Brand        string   `json:"brand"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	MPN          string   `json:"mpn"`
	PartNumber   string   `json:"part_number"`
	Description  string   `json:"description"`
	Overview     string   `json:"overview"`
	ImageURL     string   `json:"imageUrl"`
	Images       []string `json:"images"`
	Category     string   `json:"category"`
}

// MapToProductRecord normalizes a Go-UPC product payload into the canonical
// record. Each canonical field takes the first non-empty candidate; Model is
// normalized to "" when no candidate is present. A nil payload maps to nil.
func MapToProductRecord(upc string, p *rawProduct) *domain.ProductRecord {
	if p == nil {
		return nil
	}

	imageURL := p.ImageURL
	if imageURL == "" && len(p.Images) > 0 {
		imageURL = p.Images[0]
	}

	return &domain.ProductRecord{
		UPC:         upc,
		Title:       firstNonEmpty(p.Name, p.Title),
		Brand:       firstNonEmpty(p.Brand, p.Manufacturer),
		Model:       firstNonEmpty(p.Model, p.MPN, p.PartNumber),
		Description: firstNonEmpty(p.Description, p.Overview),
		ImageURL:    imageURL,
		Category:    p.Category,
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
