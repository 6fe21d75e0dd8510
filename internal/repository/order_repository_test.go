package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// insertOrder simulates the payment provider's webhook writing an order
// record after a session settles.
func insertOrder(t *testing.T, pool *pgxpool.Pool, id uuid.UUID, sessionID, buyerID, floristID string, total string) {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO orders (id, session_id, buyer_id, florist_id, total, currency, status)
		VALUES ($1, $2, $3, $4, $5, 'USD', 'paid')
	`, id, sessionID, buyerID, floristID, total)
	require.NoError(t, err)
}

func TestOrderRepository_FindBySessionID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	t.Run("Unsettled session returns nil without error", func(t *testing.T) {
		order, err := repo.FindBySessionID(ctx, "cs_pending")
		require.NoError(t, err)
		assert.Nil(t, order)
	})

	t.Run("Settled session returns the order", func(t *testing.T) {
		orderID := uuid.New()
		insertOrder(t, pool, orderID, "cs_settled", "buyer-1", "fl-1", "439.00")

		order, err := repo.FindBySessionID(ctx, "cs_settled")
		require.NoError(t, err)
		require.NotNil(t, order)

		assert.Equal(t, orderID, order.ID)
		assert.Equal(t, "cs_settled", order.SessionID)
		assert.Equal(t, "buyer-1", order.BuyerID)
		assert.Equal(t, "fl-1", order.FloristID)
		assert.Equal(t, "paid", order.Status)
		assert.True(t, order.Total.Equal(decimal.RequireFromString("439.00")))
		assert.False(t, order.CreatedAt.IsZero())
	})

	t.Run("Repeated reads observe the same record", func(t *testing.T) {
		first, err := repo.FindBySessionID(ctx, "cs_settled")
		require.NoError(t, err)
		second, err := repo.FindBySessionID(ctx, "cs_settled")
		require.NoError(t, err)

		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.Equal(t, first.ID, second.ID)
	})
}
