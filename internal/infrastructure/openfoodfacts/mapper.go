package openfoodfacts

import "github.com/stockroom/backend/internal/domain"

// lookupResponse is the top-level Open Food Facts response shape. Status is 1
// when the code exists; Product may still be nil on malformed responses.
type lookupResponse struct {
	Code    string      `json:"code"`
	Status  int         `json:"status"`
	Product *rawProduct `json:"product"`
}

// rawProduct carries the Open Food Facts field names for logically equivalent
// data. The database is food-centric: there is no model concept, and brand
// data lives in pipe-separated "brands" strings.
type rawProduct struct {
	ProductName     string `json:"product_name"`
	GenericName     string `json:"generic_name"`
	Brands          string `json:"brands"`
	BrandOwner      string `json:"brand_owner"`
	IngredientsText string `json:"ingredients_text"`
	ImageURL        string `json:"image_url"`
	ImageFrontURL   string `json:"image_front_url"`
	Categories      string `json:"categories"`
}

// MapToProductRecord normalizes an Open Food Facts payload into the canonical
// record. Title falls back to the brand string as a last resort, and the
// description falls back to the title itself; Model is always "" since the
// database has no such field. A nil payload maps to nil.
func MapToProductRecord(upc string, p *rawProduct) *domain.ProductRecord {
	if p == nil {
		return nil
	}

	title := firstNonEmpty(p.ProductName, p.GenericName, p.Brands)

	return &domain.ProductRecord{
		UPC:         upc,
		Title:       title,
		Brand:       firstNonEmpty(p.Brands, p.BrandOwner),
		Model:       "",
		Description: firstNonEmpty(p.GenericName, p.IngredientsText, title),
		ImageURL:    firstNonEmpty(p.ImageURL, p.ImageFrontURL),
		Category:    p.Categories,
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
