// Package pricing computes cart totals from priced line items.
package pricing

import (
	"fmt"

	"bistro/internal/model"

	"github.com/shopspring/decimal"
)

// Rules holds the business parameters applied to every cart.
type Rules struct {
	// FreeDeliveryThreshold is the subtotal at or above which delivery is free.
	FreeDeliveryThreshold decimal.Decimal
	// FlatDeliveryFee is charged on delivery carts below the threshold.
	FlatDeliveryFee decimal.Decimal
	// TaxRate is a fraction, e.g. 0.10 for ten percent.
	TaxRate decimal.Decimal
}

// DefaultRules returns the house pricing rules.
func DefaultRules() Rules {
	return Rules{
		FreeDeliveryThreshold: decimal.NewFromInt(30),
		FlatDeliveryFee:       decimal.NewFromInt(5),
		TaxRate:               decimal.RequireFromString("0.10"),
	}
}

// Compute returns subtotal, tax, delivery fee and grand total for items.
// Values are exact; call CartTotals.Round before presenting them.
func Compute(items []model.LineItem, hasDelivery bool, rules Rules) (model.CartTotals, error) {
	subtotal := decimal.Zero
	for i, item := range items {
		if item.UnitPrice.IsNegative() || item.Quantity < 1 {
			return model.CartTotals{}, fmt.Errorf("%w: item %d (%s)", model.ErrInvalidLineItem, i, item.MenuItemID)
		}
		subtotal = subtotal.Add(item.LineTotal())
	}

	if len(items) == 0 {
		return model.CartTotals{
			Subtotal:    decimal.Zero,
			TaxAmount:   decimal.Zero,
			DeliveryFee: decimal.Zero,
			GrandTotal:  decimal.Zero,
		}, nil
	}

	tax := subtotal.Mul(rules.TaxRate)

	fee := decimal.Zero
	if hasDelivery && subtotal.LessThan(rules.FreeDeliveryThreshold) {
		fee = rules.FlatDeliveryFee
	}

	return model.CartTotals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		DeliveryFee: fee,
		GrandTotal:  subtotal.Add(tax).Add(fee),
	}, nil
}

// Engine applies a fixed set of rules.
type Engine struct {
	rules Rules
}

// NewEngine creates a pricing engine for the given rules.
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the rules the engine applies.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Quote prices items with the engine's rules.
func (e *Engine) Quote(items []model.LineItem, hasDelivery bool) (model.CartTotals, error) {
	return Compute(items, hasDelivery, e.rules)
}
