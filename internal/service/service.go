package service

import (
	"context"

	"bistro/internal/model"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// MenuService defines read operations on the menu catalog.
type MenuService interface {
	// GetAll retrieves menu items with pagination. An empty category matches all.
	GetAll(ctx context.Context, category string, limit, offset int) ([]model.MenuItem, error)

	// GetByID retrieves a single menu item by ID.
	GetByID(ctx context.Context, id string) (*model.MenuItem, error)
}

// OrderService defines the order lifecycle.
type OrderService interface {
	// Quote prices a cart against the current menu without placing an order.
	Quote(ctx context.Context, req *model.CartRequest) (*model.CartQuote, error)

	// CreateOrder validates, prices and persists a new pending order.
	CreateOrder(ctx context.Context, req *model.CheckoutRequest) (*model.Order, error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]model.Order, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]model.Order, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// Transition moves an order to target if the workflow allows it.
	Transition(ctx context.Context, id uuid.UUID, target, changedBy string) (*model.Order, error)

	// Cancel moves a non-terminal order to cancelled.
	Cancel(ctx context.Context, id uuid.UUID, requestedBy string) (*model.Order, error)

	// History returns the status audit trail of an order.
	History(ctx context.Context, id uuid.UUID) ([]model.StatusChange, error)
}

// ReservationService defines the table reservation lifecycle.
type ReservationService interface {
	CreateReservation(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]model.Reservation, error)
	List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error)
	Transition(ctx context.Context, id uuid.UUID, target, changedBy string) (*model.Reservation, error)

	// Cancel cancels a reservation if it is still inside the cancellation window.
	Cancel(ctx context.Context, id uuid.UUID, requestedBy string) (*model.Reservation, error)

	History(ctx context.Context, id uuid.UUID) ([]model.StatusChange, error)
}

// normalisePage clamps pagination parameters.
func normalisePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
