// Package statemachine holds the allowed status transitions for orders and
// reservations.
package statemachine

import (
	"fmt"
	"strings"

	"bistro/internal/model"
)

// OrderTransition is a single allowed order status change.
type OrderTransition struct {
	From model.OrderStatus
	To   model.OrderStatus
}

// orderTransitions is the authoritative order workflow.
var orderTransitions = []OrderTransition{
	{From: model.OrderStatusPending, To: model.OrderStatusConfirmed},
	{From: model.OrderStatusPending, To: model.OrderStatusCancelled},
	{From: model.OrderStatusConfirmed, To: model.OrderStatusPreparing},
	{From: model.OrderStatusConfirmed, To: model.OrderStatusCancelled},
	{From: model.OrderStatusPreparing, To: model.OrderStatusReady},
	{From: model.OrderStatusPreparing, To: model.OrderStatusCancelled},
	{From: model.OrderStatusReady, To: model.OrderStatusDelivered},
	{From: model.OrderStatusReady, To: model.OrderStatusCancelled},
}

var orderTransitionSet = func() map[OrderTransition]bool {
	m := make(map[OrderTransition]bool, len(orderTransitions))
	for _, t := range orderTransitions {
		m[t] = true
	}
	return m
}()

// OrderTransitions returns the full order workflow.
func OrderTransitions() []OrderTransition {
	out := make([]OrderTransition, len(orderTransitions))
	copy(out, orderTransitions)
	return out
}

// OrderTransitionsFrom returns the statuses an order may move to from status.
func OrderTransitionsFrom(status model.OrderStatus) []model.OrderStatus {
	var next []model.OrderStatus
	for _, t := range orderTransitions {
		if t.From == status {
			next = append(next, t.To)
		}
	}
	return next
}

// IsTerminalOrder reports whether no transition leaves status.
func IsTerminalOrder(status model.OrderStatus) bool {
	return len(OrderTransitionsFrom(status)) == 0
}

// CanTransitionOrder returns nil if an order may move from one status to another.
func CanTransitionOrder(from, to model.OrderStatus) error {
	if orderTransitionSet[OrderTransition{From: from, To: to}] {
		return nil
	}
	next := OrderTransitionsFrom(from)
	names := make([]string, len(next))
	for i, s := range next {
		names[i] = string(s)
	}
	return fmt.Errorf("%w: order %s -> %s (allowed: %s)",
		model.ErrInvalidTransition, from, to, describe(names))
}

func describe(names []string) string {
	if len(names) == 0 {
		return "none (terminal state)"
	}
	return strings.Join(names, ", ")
}
