package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every order status in workflow order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OrderType is how the customer receives the order.
type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDineIn   OrderType = "dine_in"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDelivery, OrderTypePickup, OrderTypeDineIn:
		return true
	}
	return false
}

// Order represents a customer order.
type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	CustomerID      string      `json:"customerId" db:"customer_id"`
	Items           []OrderItem `json:"items"`
	Status          OrderStatus `json:"status" db:"status"`
	OrderType       OrderType   `json:"orderType" db:"order_type"`
	DeliveryAddress *string     `json:"deliveryAddress,omitempty" db:"delivery_address"`
	Totals          CartTotals  `json:"totals"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a line item snapshot stored with an order.
type OrderItem struct {
	ID      uuid.UUID `json:"-" db:"id"`
	OrderID uuid.UUID `json:"-" db:"order_id"`
	LineItem
}

// CheckoutRequest represents the request payload for placing an order.
type CheckoutRequest struct {
	CustomerID      string            `json:"customerId"`
	OrderType       OrderType         `json:"orderType"`
	DeliveryAddress *string           `json:"deliveryAddress,omitempty"`
	Items           []CartItemRequest `json:"items"`

	// IdempotencyKey is taken from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

// OrderFilter narrows an order listing. Zero values mean "any".
type OrderFilter struct {
	CustomerID string
	Status     OrderStatus
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// StatusChangeRequest is the payload for moving an order or reservation to a new status.
type StatusChangeRequest struct {
	Status    string `json:"status"`
	ChangedBy string `json:"changedBy"`
}

// CancelRequest is the payload for cancelling an order or reservation.
type CancelRequest struct {
	RequestedBy string `json:"requestedBy"`
}

// StatusChange is one row of an order or reservation audit trail.
type StatusChange struct {
	ID        uuid.UUID `json:"id" db:"id"`
	EntityID  uuid.UUID `json:"entityId" db:"entity_id"`
	From      string    `json:"from" db:"from_status"`
	To        string    `json:"to" db:"to_status"`
	ChangedBy string    `json:"changedBy" db:"changed_by"`
	ChangedAt time.Time `json:"changedAt" db:"changed_at"`
}
