package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromoKind enumerates the supported discount strategies.
type PromoKind string

const (
	// PromoKindPercent applies a percentage-based discount to the subtotal.
	PromoKindPercent PromoKind = "percent"
	// PromoKindFixed applies a fixed monetary discount capped at the subtotal.
	PromoKindFixed PromoKind = "fixed"
)

// PromoCode is a discount token with validity constraints.
type PromoCode struct {
	Code           string          `json:"code"`
	Kind           PromoKind       `json:"kind"`
	Value          decimal.Decimal `json:"value"`
	MinOrderAmount decimal.Decimal `json:"minOrderAmount"`
	ExpiresAt      *time.Time      `json:"expiresAt,omitempty"`
	Active         bool            `json:"active"`
}

// Expired reports whether the code's expiry has passed at the given time.
func (p PromoCode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}
