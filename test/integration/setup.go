// Package integration runs the HTTP API and repositories against a real
// PostgreSQL container.
package integration

import (
	"context"
	"testing"
	"time"

	"bistro/internal/config"
	"bistro/internal/database"
	"bistro/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
}

// SetupTestDB starts a PostgreSQL container, connects through database.NewPool
// and applies the embedded migrations.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
	}
}

// SampleMenu is the menu seeded by SeedMenu.
var SampleMenu = []model.MenuItem{
	{ID: "M001", Name: "Margherita", Category: "pizza", Price: decimal.RequireFromString("12.50"), Available: true},
	{ID: "M002", Name: "Garlic Bread", Category: "starters", Price: decimal.RequireFromString("5.00"), Available: true},
	{ID: "M003", Name: "Tiramisu", Category: "desserts", Price: decimal.RequireFromString("7.50"), Available: true},
	{ID: "M004", Name: "Lobster Linguine", Category: "mains", Price: decimal.RequireFromString("32.00"), Available: false},
	{ID: "M005", Name: "Diavola", Category: "pizza", Price: decimal.RequireFromString("14.00"), Available: true},
}

// SeedMenu inserts SampleMenu into the database.
func SeedMenu(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	for _, m := range SampleMenu {
		_, err := pool.Exec(ctx,
			"INSERT INTO menu_items (id, name, category, price, available) VALUES ($1, $2, $3, $4, $5)",
			m.ID, m.Name, m.Category, m.Price, m.Available,
		)
		if err != nil {
			t.Fatalf("failed to seed menu item %s: %v", m.ID, err)
		}
	}
}

// CleanupDB removes all rows from the application tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE order_status_history, order_items, orders,
		         reservation_status_history, reservations, menu_items
		CASCADE`)
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}
