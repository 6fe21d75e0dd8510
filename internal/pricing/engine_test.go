package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bloomkart/internal/match"
	"bloomkart/internal/model"
)

// MockCatalog is a mock implementation of promo.Catalog.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Lookup(ctx context.Context, code string) (*model.PromoCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

func (m *MockCatalog) Size() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockCatalog) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testCart() model.CartSnapshot {
	return model.CartSnapshot{
		Items: []model.CartLine{
			{ProductID: "rose", Name: "Rose", UnitPrice: decimal.NewFromInt(150), Qty: 2},
			{ProductID: "tulip", Name: "Tulip", UnitPrice: decimal.NewFromInt(90), Qty: 1},
		},
	}
}

func newTestEngine(t *testing.T, catalog *MockCatalog) *Engine {
	t.Helper()
	engine, err := NewEngine(catalog, DefaultFeePolicy(), "sek", zerolog.Nop())
	require.NoError(t, err)
	return engine
}

func TestPrice_PickupNoPromo(t *testing.T) {
	engine := newTestEngine(t, new(MockCatalog))

	order, err := engine.Price(context.Background(), testCart(), nil, "", model.DeliveryTypePickup)

	require.NoError(t, err)
	assert.True(t, order.ItemsSubtotal.Equal(decimal.NewFromInt(390)))
	assert.True(t, order.GiftsSubtotal.IsZero())
	assert.True(t, order.Discount.IsZero())
	assert.True(t, order.DeliveryFee.IsZero())
	assert.True(t, order.Total.Equal(decimal.NewFromInt(390)))
	assert.Empty(t, order.PromoRejection)
}

func TestPrice_PercentPromo(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("Lookup", mock.Anything, "WELCOME10").Return(&model.PromoCode{
		Code:   "WELCOME10",
		Kind:   model.PromoKindPercent,
		Value:  decimal.NewFromInt(10),
		Active: true,
	}, nil)

	engine := newTestEngine(t, catalog)

	order, err := engine.Price(context.Background(), testCart(), nil, "WELCOME10", model.DeliveryTypePickup)

	require.NoError(t, err)
	assert.True(t, order.Discount.Equal(decimal.NewFromInt(39)), "got %s", order.Discount)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(351)), "got %s", order.Total)
	assert.Equal(t, "WELCOME10", order.PromoCodeApplied)
	assert.False(t, order.DiscountClamped)
	catalog.AssertExpectations(t)
}

func TestPrice_DeliveryFeeFromDistance(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("Lookup", mock.Anything, "WELCOME10").Return(&model.PromoCode{
		Code:   "WELCOME10",
		Kind:   model.PromoKindPercent,
		Value:  decimal.NewFromInt(10),
		Active: true,
	}, nil)

	engine := newTestEngine(t, catalog)
	matched := &match.Result{FloristID: "f-1", FloristName: "Blooms", DistanceKm: 5.2, Matched: true}

	order, err := engine.Price(context.Background(), testCart(), matched, "WELCOME10", model.DeliveryTypeDelivery)

	require.NoError(t, err)
	// 5.2 km lands in the 5-10 km tier of the default policy.
	assert.True(t, order.DeliveryFee.Equal(decimal.NewFromInt(69)), "got %s", order.DeliveryFee)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(351+69)), "got %s", order.Total)
	assert.Equal(t, "f-1", order.FloristID)
}

func TestPrice_DeliveryWithoutFlorist(t *testing.T) {
	engine := newTestEngine(t, new(MockCatalog))

	order, err := engine.Price(context.Background(), testCart(), nil, "", model.DeliveryTypeDelivery)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, model.ErrNoFloristMatched)
}

func TestPrice_EmptyCart(t *testing.T) {
	engine := newTestEngine(t, new(MockCatalog))

	order, err := engine.Price(context.Background(), model.CartSnapshot{}, nil, "", model.DeliveryTypePickup)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, model.ErrEmptyCart)
}

func TestPrice_InvalidQuantity(t *testing.T) {
	engine := newTestEngine(t, new(MockCatalog))
	cart := model.CartSnapshot{
		Items: []model.CartLine{{ProductID: "rose", UnitPrice: decimal.NewFromInt(150), Qty: 0}},
	}

	order, err := engine.Price(context.Background(), cart, nil, "", model.DeliveryTypePickup)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
}

func TestPrice_GiftsIncludedInSubtotal(t *testing.T) {
	engine := newTestEngine(t, new(MockCatalog))
	cart := testCart()
	cart.Gifts = []model.CartLine{
		{ProductID: "card", Name: "Greeting card", UnitPrice: decimal.NewFromInt(25), Qty: 2},
	}

	order, err := engine.Price(context.Background(), cart, nil, "", model.DeliveryTypePickup)

	require.NoError(t, err)
	assert.True(t, order.ItemsSubtotal.Equal(decimal.NewFromInt(390)))
	assert.True(t, order.GiftsSubtotal.Equal(decimal.NewFromInt(50)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(440)))
}

func TestPrice_PromoRejections(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)

	tests := []struct {
		name      string
		promo     *model.PromoCode
		rejection string
	}{
		{
			name:      "not found",
			promo:     nil,
			rejection: PromoRejectionNotFound,
		},
		{
			name: "expired",
			promo: &model.PromoCode{
				Code: "OLD", Kind: model.PromoKindPercent, Value: decimal.NewFromInt(10),
				Active: true, ExpiresAt: &past,
			},
			rejection: PromoRejectionExpired,
		},
		{
			name: "inactive",
			promo: &model.PromoCode{
				Code: "OFF", Kind: model.PromoKindPercent, Value: decimal.NewFromInt(10),
				Active: false,
			},
			rejection: PromoRejectionInactive,
		},
		{
			name: "below minimum",
			promo: &model.PromoCode{
				Code: "BIG", Kind: model.PromoKindFixed, Value: decimal.NewFromInt(100),
				MinOrderAmount: decimal.NewFromInt(1000), Active: true,
			},
			rejection: PromoRejectionBelowMinimum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(MockCatalog)
			if tt.promo == nil {
				catalog.On("Lookup", mock.Anything, mock.Anything).Return(nil, nil)
			} else {
				catalog.On("Lookup", mock.Anything, mock.Anything).Return(tt.promo, nil)
			}

			engine := newTestEngine(t, catalog)

			order, err := engine.Price(context.Background(), testCart(), nil, "SOMECODE", model.DeliveryTypePickup)

			// Promo problems are non-fatal: the order prices without a discount.
			require.NoError(t, err)
			assert.Equal(t, tt.rejection, order.PromoRejection)
			assert.True(t, order.Discount.IsZero())
			assert.Empty(t, order.PromoCodeApplied)
			assert.True(t, order.Total.Equal(decimal.NewFromInt(390)))
		})
	}
}

func TestPrice_DiscountClampedToSubtotal(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("Lookup", mock.Anything, "MEGA").Return(&model.PromoCode{
		Code:   "MEGA",
		Kind:   model.PromoKindPercent,
		Value:  decimal.NewFromInt(150),
		Active: true,
	}, nil)

	engine := newTestEngine(t, catalog)
	matched := &match.Result{FloristID: "f-1", DistanceKm: 2, Matched: true}

	order, err := engine.Price(context.Background(), testCart(), matched, "MEGA", model.DeliveryTypeDelivery)

	require.NoError(t, err)
	assert.True(t, order.Discount.Equal(decimal.NewFromInt(390)), "discount clamps to the combined subtotal")
	assert.True(t, order.DiscountClamped)
	// Delivery fee still applies on top of the zeroed goods total.
	assert.True(t, order.Total.Equal(decimal.NewFromInt(49)), "got %s", order.Total)
	assert.False(t, order.Total.IsNegative())
}

func TestPrice_FixedDiscountCappedAtSubtotal(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("Lookup", mock.Anything, "FLAT500").Return(&model.PromoCode{
		Code:   "FLAT500",
		Kind:   model.PromoKindFixed,
		Value:  decimal.NewFromInt(500),
		Active: true,
	}, nil)

	engine := newTestEngine(t, catalog)

	order, err := engine.Price(context.Background(), testCart(), nil, "FLAT500", model.DeliveryTypePickup)

	require.NoError(t, err)
	assert.True(t, order.Discount.Equal(decimal.NewFromInt(390)))
	assert.True(t, order.Total.IsZero())
}

func TestPrice_DoesNotMutateCallerCart(t *testing.T) {
	engine := newTestEngine(t, new(MockCatalog))
	cart := testCart()

	_, err := engine.Price(context.Background(), cart, nil, "", model.DeliveryTypePickup)
	require.NoError(t, err)

	assert.Len(t, cart.Items, 2)
	assert.True(t, cart.Items[0].UnitPrice.Equal(decimal.NewFromInt(150)))
}

func TestPrice_ManyLinesNoDrift(t *testing.T) {
	engine := newTestEngine(t, new(MockCatalog))

	lines := make([]model.CartLine, 1000)
	for i := range lines {
		lines[i] = model.CartLine{ProductID: "stem", UnitPrice: decimal.NewFromFloat(0.1), Qty: 1}
	}

	order, err := engine.Price(context.Background(), model.CartSnapshot{Items: lines}, nil, "", model.DeliveryTypePickup)

	require.NoError(t, err)
	// 1000 x 0.10 sums to exactly 100 with decimal arithmetic.
	assert.True(t, order.Total.Equal(decimal.NewFromInt(100)), "got %s", order.Total)
}

func TestPrice_TotalMinorUnits(t *testing.T) {
	order := model.PricedOrder{Total: decimal.NewFromFloat(351.55)}
	assert.Equal(t, int64(35155), order.TotalMinorUnits())
}
