package model

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a table reservation.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// ReservationStatuses lists every reservation status.
var ReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusCompleted,
	ReservationStatusCancelled,
	ReservationStatusNoShow,
}

// Valid reports whether s is a known reservation status.
func (s ReservationStatus) Valid() bool {
	for _, known := range ReservationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Reservation represents a table booking, either by a customer account or a guest.
type Reservation struct {
	ID                  uuid.UUID         `json:"id" db:"id"`
	CustomerID          *string           `json:"customerId,omitempty" db:"customer_id"`
	GuestName           *string           `json:"guestName,omitempty" db:"guest_name"`
	GuestEmail          *string           `json:"guestEmail,omitempty" db:"guest_email"`
	GuestPhone          *string           `json:"guestPhone,omitempty" db:"guest_phone"`
	ReservationDateTime time.Time         `json:"reservationDateTime" db:"reservation_at"`
	PartySize           int               `json:"partySize" db:"party_size"`
	Status              ReservationStatus `json:"status" db:"status"`
	SpecialRequests     *string           `json:"specialRequests,omitempty" db:"special_requests"`
	CreatedAt           time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time         `json:"updatedAt" db:"updated_at"`
}

// ReservationRequest represents the request payload for booking a table.
type ReservationRequest struct {
	CustomerID          *string   `json:"customerId,omitempty"`
	GuestName           *string   `json:"guestName,omitempty"`
	GuestEmail          *string   `json:"guestEmail,omitempty"`
	GuestPhone          *string   `json:"guestPhone,omitempty"`
	ReservationDateTime time.Time `json:"reservationDateTime"`
	PartySize           int       `json:"partySize"`
	SpecialRequests     *string   `json:"specialRequests,omitempty"`
}

// ReservationFilter narrows a reservation listing. Zero values mean "any".
type ReservationFilter struct {
	CustomerID string
	Status     ReservationStatus
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
