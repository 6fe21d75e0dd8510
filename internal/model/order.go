package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the durable order record. It is written out-of-band by the
// payment provider's webhook once a session completes; this pipeline only
// reads it, keyed by checkout session id.
type Order struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	SessionID string          `json:"sessionId" db:"session_id"`
	BuyerID   string          `json:"buyerId" db:"buyer_id"`
	FloristID string          `json:"floristId" db:"florist_id"`
	Total     decimal.Decimal `json:"total" db:"total"`
	Currency  string          `json:"currency" db:"currency"`
	Status    string          `json:"status" db:"status"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}
