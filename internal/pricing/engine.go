package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bloomkart/internal/match"
	"bloomkart/internal/model"
	"bloomkart/internal/promo"
)

// Promo rejection reasons surfaced on the priced order. These are
// non-fatal: the order prices with a zero discount and the caller decides
// whether to proceed or block.
const (
	PromoRejectionNotFound     = "not_found"
	PromoRejectionExpired      = "expired"
	PromoRejectionInactive     = "inactive"
	PromoRejectionBelowMinimum = "below_minimum"
)

// Engine computes the full price breakdown for a checkout attempt.
// It is pure apart from the catalog lookup and safe for concurrent use.
type Engine struct {
	catalog  promo.Catalog
	fees     FeePolicy
	currency string
	logger   zerolog.Logger
	now      func() time.Time
}

// NewEngine creates a new pricing engine.
func NewEngine(catalog promo.Catalog, fees FeePolicy, currency string, logger zerolog.Logger) (*Engine, error) {
	if err := fees.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fee policy: %w", err)
	}

	return &Engine{
		catalog:  catalog,
		fees:     fees,
		currency: currency,
		logger:   logger.With().Str("component", "pricing-engine").Logger(),
		now:      time.Now,
	}, nil
}

// Price computes subtotals, promo discount, delivery fee and grand total.
// An empty cart and a missing florist on a delivery order are fatal;
// promo problems degrade to a zero discount with the reason surfaced in
// PromoRejection. Rounding to the currency minor unit happens only on the
// final total, never per line.
func (e *Engine) Price(ctx context.Context, cart model.CartSnapshot, matched *match.Result, promoCode string, deliveryType model.DeliveryType) (*model.PricedOrder, error) {
	if cart.Empty() {
		return nil, model.ErrEmptyCart
	}

	cart = cart.Clone()

	itemsSubtotal, err := sumLines(cart.Items)
	if err != nil {
		return nil, err
	}
	giftsSubtotal, err := sumLines(cart.Gifts)
	if err != nil {
		return nil, err
	}
	combined := itemsSubtotal.Add(giftsSubtotal)

	order := &model.PricedOrder{
		ItemsSubtotal: itemsSubtotal,
		GiftsSubtotal: giftsSubtotal,
		Discount:      decimal.Zero,
		DeliveryFee:   decimal.Zero,
		Currency:      e.currency,
	}

	if promoCode != "" {
		e.applyPromo(ctx, order, promoCode, combined)
	}

	if deliveryType == model.DeliveryTypeDelivery {
		if matched == nil {
			return nil, model.ErrNoFloristMatched
		}
		order.DeliveryFee = e.fees.FeeFor(matched.DistanceKm)
	}

	if matched != nil {
		order.FloristID = matched.FloristID
	}

	total := combined.Sub(order.Discount).Add(order.DeliveryFee)
	if total.IsNegative() {
		// Discount clamping keeps this from happening; floor defensively.
		total = decimal.Zero
	}
	order.Total = total.Round(2)

	e.logger.Debug().
		Str("items_subtotal", order.ItemsSubtotal.String()).
		Str("gifts_subtotal", order.GiftsSubtotal.String()).
		Str("discount", order.Discount.String()).
		Str("delivery_fee", order.DeliveryFee.String()).
		Str("total", order.Total.String()).
		Str("florist_id", order.FloristID).
		Msg("priced order")

	return order, nil
}

// applyPromo resolves and applies a promo code against the combined
// subtotal, recording a rejection reason instead of failing.
func (e *Engine) applyPromo(ctx context.Context, order *model.PricedOrder, code string, combined decimal.Decimal) {
	resolved, err := e.catalog.Lookup(ctx, code)
	if err != nil {
		e.logger.Warn().Err(err).Str("promo_code", code).Msg("promo lookup failed")
		order.PromoRejection = PromoRejectionNotFound
		return
	}

	switch {
	case resolved == nil:
		order.PromoRejection = PromoRejectionNotFound
	case resolved.Expired(e.now()):
		order.PromoRejection = PromoRejectionExpired
	case !resolved.Active:
		order.PromoRejection = PromoRejectionInactive
	case combined.LessThan(resolved.MinOrderAmount):
		order.PromoRejection = PromoRejectionBelowMinimum
	default:
		discount := discountFor(*resolved, combined)
		if discount.GreaterThan(combined) {
			discount = combined
			order.DiscountClamped = true
		}
		order.Discount = discount
		order.PromoCodeApplied = resolved.Code
		return
	}

	e.logger.Info().
		Str("promo_code", code).
		Str("rejection", order.PromoRejection).
		Msg("promo code rejected")
}

// discountFor computes the raw discount amount for a resolved promo code.
func discountFor(p model.PromoCode, combined decimal.Decimal) decimal.Decimal {
	switch p.Kind {
	case model.PromoKindPercent:
		return combined.Mul(p.Value).Div(decimal.NewFromInt(100))
	case model.PromoKindFixed:
		if p.Value.GreaterThan(combined) {
			return combined
		}
		return p.Value
	default:
		return decimal.Zero
	}
}

// sumLines sums unitPrice x qty across lines without intermediate rounding.
func sumLines(lines []model.CartLine) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, line := range lines {
		if line.Qty < 1 {
			return decimal.Zero, model.ErrInvalidQuantity
		}
		sum = sum.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	return sum, nil
}
