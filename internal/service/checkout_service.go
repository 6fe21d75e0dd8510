package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"bloomkart/internal/events"
	"bloomkart/internal/geo"
	"bloomkart/internal/geocode"
	"bloomkart/internal/match"
	"bloomkart/internal/model"
	"bloomkart/internal/payment"
	"bloomkart/internal/settlement"
)

// FloristMatcher finds the fulfilling florist for a delivery address.
type FloristMatcher interface {
	MatchNearest(ctx context.Context, customer *geo.Coordinate, addressText, countryHint string) (*match.Result, error)
}

// Pricer computes the full price breakdown for a cart.
type Pricer interface {
	Price(ctx context.Context, cart model.CartSnapshot, matched *match.Result, promoCode string, deliveryType model.DeliveryType) (*model.PricedOrder, error)
}

// SessionOpener opens hosted payment sessions with the provider.
type SessionOpener interface {
	CreateSession(ctx context.Context, order *model.PricedOrder, contact model.BuyerContact, meta payment.CheckoutMetadata) (*model.CheckoutSession, error)
}

// SettlementTracker tracks a session's settlement lifecycle.
type SettlementTracker interface {
	AwaitConfirmation(ctx context.Context, sessionID string) (settlement.Outcome, error)
	Status(ctx context.Context, sessionID string) settlement.Outcome
	Abandon(sessionID string)
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	matcher   FloristMatcher
	pricer    Pricer
	broker    SessionOpener
	tracker   SettlementTracker
	geocoder  geocode.Geocoder
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	matcher FloristMatcher,
	pricer Pricer,
	broker SessionOpener,
	tracker SettlementTracker,
	geocoder geocode.Geocoder,
	publisher events.Publisher,
	logger zerolog.Logger,
) CheckoutService {
	if geocoder == nil {
		geocoder = geocode.Disabled{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &checkoutService{
		matcher:   matcher,
		pricer:    pricer,
		broker:    broker,
		tracker:   tracker,
		geocoder:  geocoder,
		publisher: publisher,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// Quote prices the cart without side effects.
func (s *checkoutService) Quote(ctx context.Context, req *model.CheckoutRequest) (*model.QuoteResponse, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	matched, err := s.resolveMatch(ctx, req)
	if err != nil {
		return nil, err
	}

	pricing, err := s.pricer.Price(ctx, req.Cart, matched, req.PromoCode, req.DeliveryType)
	if err != nil {
		return nil, err
	}

	return &model.QuoteResponse{
		Pricing: pricing,
		Match:   floristMatch(matched),
	}, nil
}

// Checkout prices the cart and opens a hosted payment session.
func (s *checkoutService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	matched, err := s.resolveMatch(ctx, req)
	if err != nil {
		return nil, err
	}

	pricing, err := s.pricer.Price(ctx, req.Cart, matched, req.PromoCode, req.DeliveryType)
	if err != nil {
		return nil, err
	}

	session, err := s.broker.CreateSession(ctx, pricing, req.Buyer, payment.CheckoutMetadata{
		DeliveryType: req.DeliveryType,
		Address:      req.Address,
		Note:         req.Note,
		Items:        req.Cart.Items,
		Gifts:        req.Cart.Gifts,
	})
	if err != nil {
		s.logger.Warn().
			Str("buyer_id", req.Buyer.BuyerID).
			Err(err).
			Msg("failed to open checkout session")
		return nil, err
	}

	s.publisher.Publish(events.EventCheckoutSessionCreated, session.SessionID, events.CheckoutSessionCreatedPayload{
		SessionID:      session.SessionID,
		BuyerID:        req.Buyer.BuyerID,
		FloristID:      pricing.FloristID,
		TotalMinor:     pricing.TotalMinorUnits(),
		Currency:       pricing.Currency,
		PaymentMethods: session.AcceptedPaymentMethods,
		DeliveryType:   string(req.DeliveryType),
	})

	if session.FallbackReason != "" {
		s.publisher.Publish(events.EventPaymentMethodFallback, session.SessionID, events.PaymentMethodFallbackPayload{
			SessionID:       session.SessionID,
			AcceptedMethods: session.AcceptedPaymentMethods,
			Reason:          session.FallbackReason,
		})
	}

	s.logger.Info().
		Str("session_id", session.SessionID).
		Str("buyer_id", req.Buyer.BuyerID).
		Str("florist_id", pricing.FloristID).
		Int64("total_minor", pricing.TotalMinorUnits()).
		Msg("checkout session opened")

	return &model.CheckoutResponse{
		Pricing: pricing,
		Match:   floristMatch(matched),
		Session: session,
	}, nil
}

// Await blocks until the session settles or the wait ends.
func (s *checkoutService) Await(ctx context.Context, sessionID string) (settlement.Outcome, error) {
	return s.tracker.AwaitConfirmation(ctx, sessionID)
}

// Status reports the session's current settlement state.
func (s *checkoutService) Status(ctx context.Context, sessionID string) settlement.Outcome {
	return s.tracker.Status(ctx, sessionID)
}

// Abandon marks the session abandoned locally.
func (s *checkoutService) Abandon(sessionID string) {
	s.tracker.Abandon(sessionID)
}

// resolveMatch finds the fulfilling florist for delivery orders. Pickup
// orders are fulfilled at the buyer's chosen shop and skip matching.
func (s *checkoutService) resolveMatch(ctx context.Context, req *model.CheckoutRequest) (*match.Result, error) {
	if req.DeliveryType != model.DeliveryTypeDelivery {
		return nil, nil
	}

	coord := req.Coordinate
	if coord == nil && req.Address != "" {
		// Geocoding is best effort: a failed lookup degrades to
		// coordinate-free matching rather than failing the checkout.
		if res, err := s.geocoder.Resolve(ctx, req.Address); err == nil && res != nil {
			coord = &res.Coordinate
			s.logger.Debug().
				Float64("lat", coord.Lat).
				Float64("lon", coord.Lon).
				Msg("geocoded delivery address")
		}
	}

	matched, err := s.matcher.MatchNearest(ctx, coord, req.Address, req.CountryHint)
	if err != nil {
		s.logger.Warn().
			Str("buyer_id", req.Buyer.BuyerID).
			Err(err).
			Msg("florist matching failed")
		return nil, err
	}
	return matched, nil
}

// validateCheckoutRequest rejects malformed requests before any work.
func validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "checkout request body is required")
	}
	if !req.DeliveryType.Valid() {
		return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("invalid delivery type: %q", req.DeliveryType))
	}
	if req.Cart.Empty() {
		return model.ErrEmptyCart
	}
	if req.DeliveryType == model.DeliveryTypeDelivery && req.Address == "" && req.Coordinate == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "delivery orders require an address or coordinate")
	}
	return nil
}

// floristMatch maps the matcher result into its API shape.
func floristMatch(m *match.Result) *model.FloristMatch {
	if m == nil {
		return nil
	}
	out := &model.FloristMatch{
		FloristID:      m.FloristID,
		FloristName:    m.FloristName,
		RadiusExceeded: m.RadiusExceeded,
	}
	if m.Matched {
		out.DistanceKm = m.DistanceKm
	}
	return out
}
