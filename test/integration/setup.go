package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Create connection pool
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS florists (
			id VARCHAR(50) PRIMARY KEY,
			business_name VARCHAR(255) NOT NULL,
			city VARCHAR(100) NOT NULL DEFAULT '',
			country VARCHAR(2) NOT NULL DEFAULT '',
			lat DOUBLE PRECISION,
			lon DOUBLE PRECISION,
			available BOOLEAN NOT NULL DEFAULT true,
			service_radius_km DOUBLE PRECISION,
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			platform_fee_percent DECIMAL(5, 4) NOT NULL DEFAULT 0.15,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			session_id VARCHAR(100) NOT NULL UNIQUE,
			buyer_id VARCHAR(50) NOT NULL,
			florist_id VARCHAR(50),
			total DECIMAL(12, 2) NOT NULL,
			currency VARCHAR(3) NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_orders_session_id ON orders(session_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedFlorists inserts test florist data into the database. The set covers
// the matching edge cases: in radius, tight radius, no coordinate, closed.
func SeedFlorists(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	f := func(v float64) *float64 { return &v }

	florists := []struct {
		id       string
		name     string
		lat, lon *float64
		avail    bool
		radiusKm *float64
		rating   float64
	}{
		{"FL001", "Blomma Sodermalm", f(59.3150), f(18.0700), true, f(10), 4.6},
		{"FL002", "Petal & Stem", f(59.3440), f(18.0500), true, f(15), 4.3},
		{"FL003", "Norrmalm Flowers", f(59.3326), f(18.0649), true, f(2), 4.8},
		{"FL004", "Postorder Blommor", nil, nil, true, nil, 4.0},
		{"FL005", "Closed Corner", f(59.3000), f(18.0000), false, f(10), 3.9},
	}

	for _, fl := range florists {
		_, err := pool.Exec(ctx, `
			INSERT INTO florists (id, business_name, city, country, lat, lon, available, service_radius_km, rating)
			VALUES ($1, $2, 'Stockholm', 'SE', $3, $4, $5, $6, $7)
		`, fl.id, fl.name, fl.lat, fl.lon, fl.avail, fl.radiusKm, fl.rating)
		if err != nil {
			t.Fatalf("failed to seed florist %s: %v", fl.id, err)
		}
	}
}

// SeedOrder simulates the payment provider webhook writing an order row
// for a settled checkout session.
func SeedOrder(t *testing.T, pool *pgxpool.Pool, sessionID, buyerID, floristID, total string) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	orderID := uuid.New()

	_, err := pool.Exec(ctx, `
		INSERT INTO orders (id, session_id, buyer_id, florist_id, total, currency, status)
		VALUES ($1, $2, $3, $4, $5, 'USD', 'paid')
	`, orderID, sessionID, buyerID, floristID, total)
	if err != nil {
		t.Fatalf("failed to seed order for session %s: %v", sessionID, err)
	}

	return orderID
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"orders", "florists"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// noplog is shorthand for the silent logger used across the suite.
func noplog() zerolog.Logger { return zerolog.Nop() }
