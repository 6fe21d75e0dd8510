package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"bloomkart/internal/model"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
// The orders table is populated by the payment provider's webhook ingest;
// this repository only reads it.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// FindBySessionID retrieves the order created for a checkout session.
// A nil order means the session has not settled yet, which is a normal
// condition for the settlement watcher, not an error.
func (r *orderRepository) FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	query := `
		SELECT id, session_id, buyer_id, florist_id, total, currency, status,
		       created_at, updated_at
		FROM orders
		WHERE session_id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&order.ID,
		&order.SessionID,
		&order.BuyerID,
		&order.FloristID,
		&order.Total,
		&order.Currency,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to query order by session")
		return nil, fmt.Errorf("failed to query order by session: %w", err)
	}

	return &order, nil
}
