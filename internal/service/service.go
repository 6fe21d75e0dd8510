package service

import (
	"context"

	"bloomkart/internal/model"
	"bloomkart/internal/settlement"
)

// CheckoutService defines the checkout pipeline operations: quoting a
// cart, opening a hosted payment session and tracking its settlement.
type CheckoutService interface {
	// Quote prices the cart without side effects.
	Quote(ctx context.Context, req *model.CheckoutRequest) (*model.QuoteResponse, error)

	// Checkout prices the cart and opens a hosted payment session.
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// Await blocks until the session settles, is abandoned, times out, or
	// ctx is cancelled.
	Await(ctx context.Context, sessionID string) (settlement.Outcome, error)

	// Status reports the session's current settlement state without blocking.
	Status(ctx context.Context, sessionID string) settlement.Outcome

	// Abandon marks the session abandoned locally. A later settlement is
	// still honored.
	Abandon(sessionID string)
}
