// Package events publishes order and reservation status changes to a message broker.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entity kinds carried in StatusEvent.Entity.
const (
	EntityOrder       = "order"
	EntityReservation = "reservation"
)

// StatusEvent announces a committed status transition.
type StatusEvent struct {
	Entity     string    `json:"entity"`
	EntityID   uuid.UUID `json:"entityId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ChangedBy  string    `json:"changedBy,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers status events. Publishing happens after the database
// commit, so callers treat a failure as a lost notification, not a failed transition.
type Publisher interface {
	Publish(ctx context.Context, event StatusEvent) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, StatusEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }
