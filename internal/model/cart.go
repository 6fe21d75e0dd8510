package model

import "github.com/shopspring/decimal"

// DeliveryType selects how the buyer receives the order.
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

// Valid reports whether the delivery type is one of the supported values.
func (d DeliveryType) Valid() bool {
	return d == DeliveryTypeDelivery || d == DeliveryTypePickup
}

// CartLine represents a single product or gift line in a cart.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageRef  string          `json:"imageRef,omitempty"`
	Qty       int             `json:"qty"`
}

// CartSnapshot is the cart as handed to the pricing engine. Callers must
// treat it as immutable after pricing; Clone produces the defensive copy.
type CartSnapshot struct {
	Items []CartLine `json:"items"`
	Gifts []CartLine `json:"gifts,omitempty"`
}

// Empty reports whether the snapshot carries no item lines at all.
func (c CartSnapshot) Empty() bool {
	return len(c.Items) == 0 && len(c.Gifts) == 0
}

// Clone returns a deep copy of the snapshot so later cart mutations by the
// caller cannot affect an in-flight pricing run.
func (c CartSnapshot) Clone() CartSnapshot {
	out := CartSnapshot{}
	if len(c.Items) > 0 {
		out.Items = make([]CartLine, len(c.Items))
		copy(out.Items, c.Items)
	}
	if len(c.Gifts) > 0 {
		out.Gifts = make([]CartLine, len(c.Gifts))
		copy(out.Gifts, c.Gifts)
	}
	return out
}
