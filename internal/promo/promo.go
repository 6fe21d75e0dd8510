package promo

import (
	"context"
	"strings"

	"bloomkart/internal/model"
)

// Catalog defines the interface for promo code lookup.
type Catalog interface {
	// Lookup resolves a promo code by its normalized form. A nil result
	// means the code does not exist; validity (expiry, active flag,
	// minimum order) is the pricing engine's concern.
	Lookup(ctx context.Context, code string) (*model.PromoCode, error)

	// Size returns the number of promo codes in the catalog.
	Size() int

	// Close releases resources held by the catalog.
	Close() error
}

// Loader defines the interface for loading promo definition files.
type Loader interface {
	// Load reads a gzipped JSON-lines promo file and returns its codes.
	Load(ctx context.Context, path string) ([]model.PromoCode, error)
}

// Normalize canonicalizes a promo code for lookup: surrounding whitespace
// is stripped and the code is upper-cased.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
