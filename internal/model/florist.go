package model

import (
	"time"

	"github.com/shopspring/decimal"

	"bloomkart/internal/geo"
)

// DefaultPlatformFeePercent is applied when a florist has no negotiated rate.
var DefaultPlatformFeePercent = decimal.NewFromFloat(0.15)

// Florist represents a merchant fulfilling orders within a service area.
// Florists are created and edited by the merchant admin flows; this
// pipeline only reads them.
type Florist struct {
	ID                 string          `json:"id" db:"id"`
	BusinessName       string          `json:"businessName" db:"business_name"`
	City               string          `json:"city" db:"city"`
	Country            string          `json:"country" db:"country"`
	Coordinate         *geo.Coordinate `json:"coordinate,omitempty"`
	Available          bool            `json:"available" db:"available"`
	ServiceRadiusKm    *float64        `json:"serviceRadiusKm,omitempty" db:"service_radius_km"`
	Rating             float64         `json:"rating" db:"rating"`
	PlatformFeePercent decimal.Decimal `json:"platformFeePercent" db:"platform_fee_percent"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
}
