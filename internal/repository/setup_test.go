package repository

import (
	"context"
	"testing"
	"time"

	"bistro/internal/database"
	"bistro/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the application schema and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container-backed repository test in short mode")
	}

	ctx := context.Background()

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

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedMenu inserts menu items directly, bypassing the repository.
func seedMenu(t *testing.T, pool *pgxpool.Pool, items []model.MenuItem) {
	ctx := context.Background()

	query := `
		INSERT INTO menu_items (id, name, category, price, available)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, m := range items {
		_, err := pool.Exec(ctx, query, m.ID, m.Name, m.Category, m.Price, m.Available)
		require.NoError(t, err)
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
