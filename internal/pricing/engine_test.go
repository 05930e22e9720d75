package pricing

import (
	"errors"
	"testing"

	"bistro/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, price string, qty int) model.LineItem {
	return model.LineItem{MenuItemID: id, UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

func TestCompute(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name        string
		items       []model.LineItem
		hasDelivery bool
		subtotal    string
		tax         string
		fee         string
		total       string
	}{
		{
			name:        "Delivery below threshold pays flat fee",
			items:       []model.LineItem{item("M1", "10.00", 2), item("M2", "5.00", 1)},
			hasDelivery: true,
			subtotal:    "25.00",
			tax:         "2.50",
			fee:         "5.00",
			total:       "32.50",
		},
		{
			name:        "Subtotal exactly at threshold delivers free",
			items:       []model.LineItem{item("M1", "10.00", 2), item("M2", "10.00", 1)},
			hasDelivery: true,
			subtotal:    "30.00",
			tax:         "3.00",
			fee:         "0.00",
			total:       "33.00",
		},
		{
			name:        "One cent under threshold pays flat fee",
			items:       []model.LineItem{item("M1", "29.99", 1)},
			hasDelivery: true,
			subtotal:    "29.99",
			tax:         "3.00",
			fee:         "5.00",
			total:       "37.99",
		},
		{
			name:        "Pickup never pays delivery",
			items:       []model.LineItem{item("M1", "4.50", 1)},
			hasDelivery: false,
			subtotal:    "4.50",
			tax:         "0.45",
			fee:         "0.00",
			total:       "4.95",
		},
		{
			name:        "Empty cart is all zero",
			items:       nil,
			hasDelivery: true,
			subtotal:    "0.00",
			tax:         "0.00",
			fee:         "0.00",
			total:       "0.00",
		},
		{
			name:        "Free item counts towards quantity only",
			items:       []model.LineItem{item("M1", "0.00", 3)},
			hasDelivery: false,
			subtotal:    "0.00",
			tax:         "0.00",
			fee:         "0.00",
			total:       "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := Compute(tt.items, tt.hasDelivery, rules)
			require.NoError(t, err)

			rounded := totals.Round()
			assert.Equal(t, tt.subtotal, rounded.Subtotal.StringFixed(2))
			assert.Equal(t, tt.tax, rounded.TaxAmount.StringFixed(2))
			assert.Equal(t, tt.fee, rounded.DeliveryFee.StringFixed(2))
			assert.Equal(t, tt.total, rounded.GrandTotal.StringFixed(2))
		})
	}
}

func TestCompute_InvalidLineItem(t *testing.T) {
	tests := []struct {
		name  string
		items []model.LineItem
	}{
		{name: "Negative price", items: []model.LineItem{item("M1", "-1.00", 1)}},
		{name: "Zero quantity", items: []model.LineItem{item("M1", "1.00", 0)}},
		{name: "Negative quantity", items: []model.LineItem{item("M1", "1.00", 2), item("M2", "1.00", -3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.items, true, DefaultRules())
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidLineItem))
		})
	}
}

func TestCompute_RoundsOnlyAtTheEnd(t *testing.T) {
	// 3 x 0.335 = 1.005 exactly; rounding each line first would give 1.02.
	items := []model.LineItem{item("M1", "0.335", 1), item("M2", "0.335", 1), item("M3", "0.335", 1)}
	rules := Rules{FreeDeliveryThreshold: decimal.Zero, FlatDeliveryFee: decimal.Zero, TaxRate: decimal.Zero}

	totals, err := Compute(items, false, rules)
	require.NoError(t, err)

	assert.Equal(t, "1.005", totals.Subtotal.String())
	assert.Equal(t, "1.01", totals.Round().Subtotal.StringFixed(2))
}

func TestCompute_Idempotent(t *testing.T) {
	items := []model.LineItem{item("M1", "12.40", 2), item("M2", "3.15", 3)}

	first, err := Compute(items, true, DefaultRules())
	require.NoError(t, err)
	second, err := Compute(items, true, DefaultRules())
	require.NoError(t, err)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.DeliveryFee.Equal(second.DeliveryFee))
	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
}

func TestEngine_Quote(t *testing.T) {
	rules := Rules{
		FreeDeliveryThreshold: decimal.NewFromInt(25),
		FlatDeliveryFee:       decimal.RequireFromString("3.50"),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
	engine := NewEngine(rules)

	totals, err := engine.Quote([]model.LineItem{item("M1", "10.00", 1)}, true)
	require.NoError(t, err)

	assert.Equal(t, rules, engine.Rules())
	assert.Equal(t, "3.50", totals.Round().DeliveryFee.StringFixed(2))
	assert.Equal(t, "14.30", totals.Round().GrandTotal.StringFixed(2))
}
