package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"bloomkart/internal/geo"
	"bloomkart/internal/model"
)

// floristRepository implements the FloristRepository interface using PostgreSQL.
type floristRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewFloristRepository creates a new PostgreSQL-backed florist repository.
func NewFloristRepository(pool *pgxpool.Pool, logger zerolog.Logger) FloristRepository {
	return &floristRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "florist").Logger(),
	}
}

// ListAvailable returns all florists currently accepting orders.
func (r *floristRepository) ListAvailable(ctx context.Context) ([]model.Florist, error) {
	query := `
		SELECT id, business_name, city, country, lat, lon, available,
		       service_radius_km, rating, platform_fee_percent, created_at
		FROM florists
		WHERE available = true
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query available florists")
		return nil, fmt.Errorf("failed to query available florists: %w", err)
	}
	defer rows.Close()

	var florists []model.Florist
	for rows.Next() {
		florist, err := scanFlorist(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan florist row")
			return nil, fmt.Errorf("failed to scan florist: %w", err)
		}
		florists = append(florists, florist)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating florist rows")
		return nil, fmt.Errorf("error iterating florists: %w", err)
	}

	return florists, nil
}

// GetByID retrieves a single florist by its ID.
func (r *floristRepository) GetByID(ctx context.Context, id string) (*model.Florist, error) {
	query := `
		SELECT id, business_name, city, country, lat, lon, available,
		       service_radius_km, rating, platform_fee_percent, created_at
		FROM florists
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	florist, err := scanFlorist(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("florist_id", id).Msg("florist not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("florist_id", id).Msg("failed to query florist")
		return nil, fmt.Errorf("failed to query florist: %w", err)
	}

	return &florist, nil
}

// scanFlorist maps a florist row, folding the nullable lat/lon pair into
// a single optional coordinate.
func scanFlorist(row pgx.Row) (model.Florist, error) {
	var (
		florist  model.Florist
		lat, lon *float64
	)

	err := row.Scan(
		&florist.ID,
		&florist.BusinessName,
		&florist.City,
		&florist.Country,
		&lat,
		&lon,
		&florist.Available,
		&florist.ServiceRadiusKm,
		&florist.Rating,
		&florist.PlatformFeePercent,
		&florist.CreatedAt,
	)
	if err != nil {
		return model.Florist{}, err
	}

	if lat != nil && lon != nil {
		florist.Coordinate = &geo.Coordinate{Lat: *lat, Lon: *lon}
	}

	return florist, nil
}
