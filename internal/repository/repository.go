package repository

import (
	"context"
	"time"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MenuRepository defines the interface for menu catalog data access operations.
type MenuRepository interface {
	// GetAll retrieves menu items with pagination support. An empty category matches all.
	GetAll(ctx context.Context, category string, limit, offset int) ([]model.MenuItem, error)

	// GetByID retrieves a single menu item by its ID.
	GetByID(ctx context.Context, id string) (*model.MenuItem, error)

	// GetByIDs retrieves multiple menu items by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.MenuItem, error)

	// Upsert inserts or replaces menu items keyed by ID.
	Upsert(ctx context.Context, items []model.MenuItem) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// UpdateStatus moves an order from one status to another. It returns
	// model.ErrConcurrentModification when the stored status is no longer from.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to model.OrderStatus, at time.Time) error

	// AppendHistory records a status change within the provided transaction.
	AppendHistory(ctx context.Context, tx pgx.Tx, change *model.StatusChange) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List retrieves orders matching the filter, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// History retrieves the status changes of an order, oldest first.
	History(ctx context.Context, id uuid.UUID) ([]model.StatusChange, error)
}

// ReservationRepository defines the interface for reservation data access operations.
type ReservationRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, tx pgx.Tx, r *model.Reservation) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to model.ReservationStatus, at time.Time) error
	AppendHistory(ctx context.Context, tx pgx.Tx, change *model.StatusChange) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error)
	History(ctx context.Context, id uuid.UUID) ([]model.StatusChange, error)
}
