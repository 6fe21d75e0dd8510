package events

import (
	"encoding/json"
	"time"
)

const (
	EventCheckoutSessionCreated = "CheckoutSessionCreated"
	EventPaymentMethodFallback  = "PaymentMethodFallback"
	EventSettlementConfirmed    = "SettlementConfirmed"
)

// Envelope wraps every published event with routing metadata.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // usually the session id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload types per event ----

type CheckoutSessionCreatedPayload struct {
	SessionID      string   `json:"session_id"`
	BuyerID        string   `json:"buyer_id"`
	FloristID      string   `json:"florist_id"`
	TotalMinor     int64    `json:"total_minor"`
	Currency       string   `json:"currency"`
	PaymentMethods []string `json:"payment_methods"`
	DeliveryType   string   `json:"delivery_type"`
}

type PaymentMethodFallbackPayload struct {
	SessionID       string   `json:"session_id"`
	AcceptedMethods []string `json:"accepted_methods"`
	Reason          string   `json:"reason"`
}

type SettlementConfirmedPayload struct {
	SessionID string `json:"session_id"`
	OrderID   string `json:"order_id"`
	BuyerID   string `json:"buyer_id,omitempty"`
}
