package statemachine

import (
	"fmt"
	"time"

	"bistro/internal/model"
)

// DefaultCancellationWindow is how long before the booked time a reservation
// can still be cancelled by the guest.
const DefaultCancellationWindow = 2 * time.Hour

// ReservationTransition is a single allowed reservation status change.
type ReservationTransition struct {
	From model.ReservationStatus
	To   model.ReservationStatus
}

var reservationTransitions = []ReservationTransition{
	{From: model.ReservationStatusPending, To: model.ReservationStatusConfirmed},
	{From: model.ReservationStatusPending, To: model.ReservationStatusCancelled},
	{From: model.ReservationStatusConfirmed, To: model.ReservationStatusCompleted},
	{From: model.ReservationStatusConfirmed, To: model.ReservationStatusCancelled},
	{From: model.ReservationStatusConfirmed, To: model.ReservationStatusNoShow},
}

var reservationTransitionSet = func() map[ReservationTransition]bool {
	m := make(map[ReservationTransition]bool, len(reservationTransitions))
	for _, t := range reservationTransitions {
		m[t] = true
	}
	return m
}()

// ReservationTransitions returns the full reservation workflow.
func ReservationTransitions() []ReservationTransition {
	out := make([]ReservationTransition, len(reservationTransitions))
	copy(out, reservationTransitions)
	return out
}

// ReservationTransitionsFrom returns the statuses a reservation may move to.
func ReservationTransitionsFrom(status model.ReservationStatus) []model.ReservationStatus {
	var next []model.ReservationStatus
	for _, t := range reservationTransitions {
		if t.From == status {
			next = append(next, t.To)
		}
	}
	return next
}

// IsTerminalReservation reports whether no transition leaves status.
func IsTerminalReservation(status model.ReservationStatus) bool {
	return len(ReservationTransitionsFrom(status)) == 0
}

// CanTransitionReservation returns nil if a reservation may move between the statuses.
func CanTransitionReservation(from, to model.ReservationStatus) error {
	if reservationTransitionSet[ReservationTransition{From: from, To: to}] {
		return nil
	}
	next := ReservationTransitionsFrom(from)
	names := make([]string, len(next))
	for i, s := range next {
		names[i] = string(s)
	}
	return fmt.Errorf("%w: reservation %s -> %s (allowed: %s)",
		model.ErrInvalidTransition, from, to, describe(names))
}

// ReservationCancellable returns nil when r is still pending or confirmed and
// its booked time is at least window away from now.
func ReservationCancellable(r *model.Reservation, now time.Time, window time.Duration) error {
	if r.Status != model.ReservationStatusPending && r.Status != model.ReservationStatusConfirmed {
		return fmt.Errorf("%w: reservation is %s", model.ErrCancellationWindowClosed, r.Status)
	}
	if r.ReservationDateTime.Sub(now) < window {
		return fmt.Errorf("%w: less than %s before the reservation", model.ErrCancellationWindowClosed, window)
	}
	return nil
}
