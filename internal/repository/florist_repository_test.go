package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Create connection pool
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	// Create schema
	createSchema(t, pool)

	// Cleanup function
	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// createSchema creates the florists and orders tables used by the
// repository tests.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS florists (
			id TEXT PRIMARY KEY,
			business_name TEXT NOT NULL,
			city TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			lat DOUBLE PRECISION,
			lon DOUBLE PRECISION,
			available BOOLEAN NOT NULL DEFAULT true,
			service_radius_km DOUBLE PRECISION,
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			platform_fee_percent DECIMAL(5,4) NOT NULL DEFAULT 0.15,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			session_id TEXT NOT NULL UNIQUE,
			buyer_id TEXT NOT NULL,
			florist_id TEXT,
			total DECIMAL(12,2) NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`

	_, err := pool.Exec(ctx, schema)
	require.NoError(t, err)
}

// insertFlorist inserts a florist row for testing.
func insertFlorist(t *testing.T, pool *pgxpool.Pool, id, name string, lat, lon *float64, available bool, radiusKm *float64, rating float64) {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO florists (id, business_name, city, country, lat, lon, available, service_radius_km, rating)
		VALUES ($1, $2, 'Stockholm', 'SE', $3, $4, $5, $6, $7)
	`, id, name, lat, lon, available, radiusKm, rating)
	require.NoError(t, err)
}

func ptr(f float64) *float64 { return &f }

func TestFloristRepository_ListAvailable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewFloristRepository(pool, zerolog.Nop())
	ctx := context.Background()

	t.Run("Empty table", func(t *testing.T) {
		florists, err := repo.ListAvailable(ctx)
		require.NoError(t, err)
		assert.Empty(t, florists)
	})

	insertFlorist(t, pool, "fl-1", "Blomma", ptr(59.33), ptr(18.06), true, ptr(10), 4.6)
	insertFlorist(t, pool, "fl-2", "Petal & Stem", nil, nil, true, nil, 4.1)
	insertFlorist(t, pool, "fl-3", "Closed Corner", ptr(59.30), ptr(18.00), false, ptr(5), 3.9)

	t.Run("Returns only available florists", func(t *testing.T) {
		florists, err := repo.ListAvailable(ctx)
		require.NoError(t, err)
		require.Len(t, florists, 2)

		assert.Equal(t, "fl-1", florists[0].ID)
		assert.Equal(t, "fl-2", florists[1].ID)
	})

	t.Run("Folds coordinates and radius", func(t *testing.T) {
		florists, err := repo.ListAvailable(ctx)
		require.NoError(t, err)

		withCoord := florists[0]
		require.NotNil(t, withCoord.Coordinate)
		assert.InDelta(t, 59.33, withCoord.Coordinate.Lat, 0.0001)
		assert.InDelta(t, 18.06, withCoord.Coordinate.Lon, 0.0001)
		require.NotNil(t, withCoord.ServiceRadiusKm)
		assert.InDelta(t, 10.0, *withCoord.ServiceRadiusKm, 0.0001)

		withoutCoord := florists[1]
		assert.Nil(t, withoutCoord.Coordinate)
		assert.Nil(t, withoutCoord.ServiceRadiusKm)
	})

	t.Run("Carries platform fee default", func(t *testing.T) {
		florists, err := repo.ListAvailable(ctx)
		require.NoError(t, err)
		assert.True(t, florists[0].PlatformFeePercent.Equal(decimal.RequireFromString("0.15")))
	})
}

func TestFloristRepository_GetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewFloristRepository(pool, zerolog.Nop())
	ctx := context.Background()

	insertFlorist(t, pool, "fl-1", "Blomma", ptr(59.33), ptr(18.06), true, ptr(10), 4.6)
	insertFlorist(t, pool, "fl-3", "Closed Corner", ptr(59.30), ptr(18.00), false, ptr(5), 3.9)

	t.Run("Found", func(t *testing.T) {
		florist, err := repo.GetByID(ctx, "fl-1")
		require.NoError(t, err)
		require.NotNil(t, florist)
		assert.Equal(t, "Blomma", florist.BusinessName)
		assert.InDelta(t, 4.6, florist.Rating, 0.0001)
	})

	t.Run("Unavailable florists are still readable by ID", func(t *testing.T) {
		florist, err := repo.GetByID(ctx, "fl-3")
		require.NoError(t, err)
		require.NotNil(t, florist)
		assert.False(t, florist.Available)
	})

	t.Run("Not found returns nil without error", func(t *testing.T) {
		florist, err := repo.GetByID(ctx, "fl-missing")
		require.NoError(t, err)
		assert.Nil(t, florist)
	})
}
