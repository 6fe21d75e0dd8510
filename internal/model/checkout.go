package model

import (
	"github.com/shopspring/decimal"

	"bloomkart/internal/geo"
)

// CheckoutRequest is the payload for quoting or opening a checkout.
type CheckoutRequest struct {
	Cart         CartSnapshot    `json:"cart"`
	DeliveryType DeliveryType    `json:"deliveryType"`
	Address      string          `json:"address,omitempty"`
	Coordinate   *geo.Coordinate `json:"coordinate,omitempty"`
	CountryHint  string          `json:"countryHint,omitempty"`
	PromoCode    string          `json:"promoCode,omitempty"`
	Note         string          `json:"note,omitempty"`
	Buyer        BuyerContact    `json:"buyer"`
}

// FloristMatch is the matching outcome as reported to API clients.
type FloristMatch struct {
	FloristID   string  `json:"floristId"`
	FloristName string  `json:"floristName"`
	DistanceKm  float64 `json:"distanceKm,omitempty"`

	// RadiusExceeded is set when the florist was chosen outside its
	// declared service radius under the nearest-any fallback.
	RadiusExceeded bool `json:"radiusExceeded,omitempty"`
}

// QuoteResponse is the priced cart without any session side effects.
type QuoteResponse struct {
	Pricing *PricedOrder  `json:"pricing"`
	Match   *FloristMatch `json:"match,omitempty"`
}

// CheckoutResponse is the outcome of opening a hosted payment session.
type CheckoutResponse struct {
	Pricing *PricedOrder     `json:"pricing"`
	Match   *FloristMatch    `json:"match,omitempty"`
	Session *CheckoutSession `json:"session"`
}

// PricedOrder is the fully computed price breakdown for a checkout attempt.
// Total = max(0, ItemsSubtotal + GiftsSubtotal - Discount + DeliveryFee);
// Discount never exceeds ItemsSubtotal + GiftsSubtotal.
type PricedOrder struct {
	ItemsSubtotal    decimal.Decimal `json:"itemsSubtotal"`
	GiftsSubtotal    decimal.Decimal `json:"giftsSubtotal"`
	Discount         decimal.Decimal `json:"discount"`
	DeliveryFee      decimal.Decimal `json:"deliveryFee"`
	Total            decimal.Decimal `json:"total"`
	Currency         string          `json:"currency"`
	FloristID        string          `json:"floristId,omitempty"`
	PromoCodeApplied string          `json:"promoCodeApplied,omitempty"`

	// PromoRejection carries the non-fatal reason a promo code yielded no
	// discount (not_found, expired, inactive, below_minimum). Empty when the
	// code applied cleanly or none was given.
	PromoRejection string `json:"promoRejection,omitempty"`

	// DiscountClamped is set when the requested discount exceeded the
	// combined subtotal and was reduced to it.
	DiscountClamped bool `json:"discountClamped,omitempty"`
}

// TotalMinorUnits returns the grand total in the currency's minor unit,
// rounded half-up, as payment providers expect.
func (p PricedOrder) TotalMinorUnits() int64 {
	return p.Total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// BuyerContact identifies the buyer on a checkout session.
type BuyerContact struct {
	BuyerID string `json:"buyerId"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
}

// CheckoutSession is the outcome of opening a hosted payment session.
// It is immutable after creation; a retry produces a new session.
type CheckoutSession struct {
	SessionID              string   `json:"sessionId"`
	CheckoutURL            string   `json:"checkoutUrl"`
	AcceptedPaymentMethods []string `json:"acceptedPaymentMethods"`

	// FallbackReason records why the preferred payment-method set was
	// rejected, when the session was opened with a reduced set.
	FallbackReason string `json:"fallbackReason,omitempty"`
}
