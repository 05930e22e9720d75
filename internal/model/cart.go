package model

import "github.com/shopspring/decimal"

// LineItem is one priced menu item and quantity within a cart or order snapshot.
type LineItem struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name,omitempty"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
}

// LineTotal returns unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// CartTotals holds the derived amounts for a cart. It is never persisted on its
// own; orders keep a rounded snapshot.
type CartTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
}

// Round returns the totals rounded to cents for display or snapshotting.
func (t CartTotals) Round() CartTotals {
	return CartTotals{
		Subtotal:    t.Subtotal.Round(2),
		TaxAmount:   t.TaxAmount.Round(2),
		DeliveryFee: t.DeliveryFee.Round(2),
		GrandTotal:  t.GrandTotal.Round(2),
	}
}

// CartItemRequest is a single menu item reference in a cart or checkout request.
type CartItemRequest struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

// CartRequest is the payload for pricing a cart without placing an order.
type CartRequest struct {
	Items     []CartItemRequest `json:"items"`
	OrderType OrderType         `json:"orderType"`
}

// CartQuote is the priced view of a cart.
type CartQuote struct {
	Items  []LineItem `json:"items"`
	Totals CartTotals `json:"totals"`
}
