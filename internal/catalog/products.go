package catalog

import (
	"fmt"
	"strings"
)

// MaxRecommendations caps how many products a search returns.
const MaxRecommendations = 5

// ProductService serves keyword search and SKU lookups over the
// product catalog.
type ProductService struct {
	products []Product
	bySKU    map[string]Product
}

// NewProductService indexes the given products, preserving catalog
// order for fallback listings.
func NewProductService(products []Product) *ProductService {
	idx := make(map[string]Product, len(products))
	for _, p := range products {
		idx[strings.ToUpper(p.SKU)] = p
	}
	return &ProductService{products: products, bySKU: idx}
}

// Search returns up to MaxRecommendations products matching the query.
// A product matches when any whitespace-separated term appears in its
// name, description, or tags, case-insensitively. An empty query or a
// query with no matches falls back to the head of the catalog so the
// model always has something to recommend.
func (s *ProductService) Search(query string) []Product {
	terms := strings.Fields(strings.ToLower(query))

	var matches []Product
	if len(terms) > 0 {
		for _, p := range s.products {
			text := p.searchText()
			for _, term := range terms {
				if strings.Contains(text, term) {
					matches = append(matches, p)
					break
				}
			}
		}
	}

	if len(matches) == 0 {
		matches = s.products
	}
	if len(matches) > MaxRecommendations {
		matches = matches[:MaxRecommendations]
	}

	out := make([]Product, len(matches))
	copy(out, matches)
	return out
}

// BySKU finds a product by SKU, case-insensitively.
func (s *ProductService) BySKU(sku string) (Product, bool) {
	p, ok := s.bySKU[strings.ToUpper(strings.TrimSpace(sku))]
	return p, ok
}

// All returns every product in catalog order.
func (s *ProductService) All() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Len returns the number of indexed products.
func (s *ProductService) Len() int {
	return len(s.products)
}

// CatalogText renders the catalog for the system prompt, one product
// per line.
func (s *ProductService) CatalogText() string {
	var b strings.Builder
	for i, p := range s.products {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s: %s", p.ProductName, p.Description)
	}
	return b.String()
}
