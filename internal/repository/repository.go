package repository

import (
	"context"

	"bloomkart/internal/model"
)

// FloristRepository defines the interface for florist directory reads.
// Florists are managed by the merchant admin flows; the checkout pipeline
// only queries them.
type FloristRepository interface {
	// ListAvailable returns all florists currently accepting orders.
	ListAvailable(ctx context.Context) ([]model.Florist, error)

	// GetByID retrieves a single florist by its ID.
	GetByID(ctx context.Context, id string) (*model.Florist, error)
}

// OrderRepository defines read access to the order records written by the
// payment provider's webhook.
type OrderRepository interface {
	// FindBySessionID retrieves the order created for a checkout session.
	// A nil order means the session has not settled yet.
	FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
}
