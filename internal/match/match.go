package match

import (
	"context"

	"bloomkart/internal/model"
)

// Directory provides read access to the florists eligible for matching.
type Directory interface {
	// ListAvailable returns all florists currently accepting orders.
	ListAvailable(ctx context.Context) ([]model.Florist, error)
}

// Result describes the florist selected for a delivery.
type Result struct {
	FloristID   string  `json:"floristId"`
	FloristName string  `json:"floristName"`
	DistanceKm  float64 `json:"distanceKm"`

	// Matched is true when a distance to the buyer could be computed.
	Matched bool `json:"matched"`

	// RadiusExceeded is set when the florist was selected by the
	// nearest-any fallback despite the buyer lying outside its declared
	// service radius.
	RadiusExceeded bool `json:"radiusExceeded,omitempty"`
}

// Config holds the matching policy knobs.
type Config struct {
	// NearestAnyFallback permits degrading to the nearest available florist
	// when no florist's service radius covers the buyer. With it off, an
	// out-of-radius buyer gets a NotFound outcome instead.
	NearestAnyFallback bool
}
