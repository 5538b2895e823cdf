package item

import (
	"testing"

	"github.com/billforge/billforge/internal/domain/discount"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEvaluateSimpleItem(t *testing.T) {
	a := NewAggregator(false, 6)

	line := a.Evaluate(LineItem{
		ID:        "sku-1",
		Name:      "Espresso",
		Quantity:  dec("3"),
		UnitPrice: dec("4.50"),
	})

	assert.True(t, line.GrossTotal.Equal(dec("13.50")))
	assert.True(t, line.NetTotal.Equal(dec("13.50")))
	assert.True(t, line.DiscountTotal.IsZero())
}

func TestEvaluateNestedAddOnsAndVariations(t *testing.T) {
	a := NewAggregator(false, 6)

	// Burger 10.00 with an add-on that itself has a nested add-on, plus a
	// variation. Children's own quantities apply inside their own
	// evaluation before the parent multiplies by its quantity.
	burger := LineItem{
		ID:        "burger",
		Name:      "Burger",
		Quantity:  dec("2"),
		UnitPrice: dec("10.00"),
		AddOns: []LineItem{
			{
				Name:      "Cheese",
				Quantity:  dec("2"),
				UnitPrice: dec("1.00"),
				AddOns: []LineItem{
					{Name: "Premium upgrade", Quantity: dec("1"), UnitPrice: dec("0.50")},
				},
			},
		},
		Variations: []LineItem{
			{Name: "Large patty", Quantity: dec("1"), UnitPrice: dec("2.00")},
		},
	}

	line := a.Evaluate(burger)

	// Cheese: (1.00 + 0.50) * 2 = 3.00; unit total = 10 + 3 + 2 = 15; gross = 30.
	assert.True(t, line.GrossTotal.Equal(dec("30.00")),
		"expected 30.00, got %s", line.GrossTotal)
	assert.True(t, line.NetTotal.Equal(dec("30.00")))
}

func TestEvaluateOwnDiscountsRunSequentially(t *testing.T) {
	a := NewAggregator(false, 6)

	line := a.Evaluate(LineItem{
		Name:      "Bundle",
		Quantity:  dec("1"),
		UnitPrice: dec("200"),
		Discounts: []discount.Rule{
			{ID: "d1", Kind: types.DiscountKindPercentage, Value: lo.ToPtr(dec("10"))},
			{ID: "d2", Kind: types.DiscountKindPercentage, Value: lo.ToPtr(dec("10"))},
		},
	})

	// Second 10% sees 180, not 200.
	assert.True(t, line.NetTotal.Equal(dec("162")),
		"expected 162, got %s", line.NetTotal)
	assert.True(t, line.DiscountTotal.Equal(dec("38")))
}

func TestEvaluateUnclampedDiscountGoesNegative(t *testing.T) {
	a := NewAggregator(false, 6)

	line := a.Evaluate(LineItem{
		Name:      "Freebie",
		Quantity:  dec("1"),
		UnitPrice: dec("10"),
		Discounts: []discount.Rule{
			{ID: "over", Kind: types.DiscountKindFlat, Value: lo.ToPtr(dec("25"))},
		},
	})

	assert.True(t, line.NetTotal.Equal(dec("-15")))
}

func TestEvaluateClampedDiscountStopsAtZero(t *testing.T) {
	a := NewAggregator(true, 6)

	line := a.Evaluate(LineItem{
		Name:      "Freebie",
		Quantity:  dec("1"),
		UnitPrice: dec("10"),
		Discounts: []discount.Rule{
			{ID: "over", Kind: types.DiscountKindFlat, Value: lo.ToPtr(dec("25"))},
		},
	})

	assert.True(t, line.NetTotal.IsZero())
}

func TestEvaluateZeroQuantity(t *testing.T) {
	a := NewAggregator(false, 6)

	line := a.Evaluate(LineItem{
		Name:      "Placeholder",
		Quantity:  decimal.Zero,
		UnitPrice: dec("99.99"),
	})

	assert.True(t, line.GrossTotal.IsZero())
	assert.True(t, line.NetTotal.IsZero())
}

func TestEvaluateAllTracksExemptTotal(t *testing.T) {
	a := NewAggregator(false, 6)

	lines, subtotal, exempt := a.EvaluateAll([]LineItem{
		{Name: "Taxed", Quantity: dec("1"), UnitPrice: dec("100")},
		{Name: "Exempt", Quantity: dec("1"), UnitPrice: dec("40"), TaxExempt: true},
	})

	assert.Len(t, lines, 2)
	assert.True(t, subtotal.Equal(dec("140")))
	assert.True(t, exempt.Equal(dec("40")))
}

func TestLineItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    LineItem
		wantErr bool
	}{
		{
			name: "valid",
			item: LineItem{Name: "ok", Quantity: dec("1"), UnitPrice: dec("1")},
		},
		{
			name:    "missing_name",
			item:    LineItem{Quantity: dec("1"), UnitPrice: dec("1")},
			wantErr: true,
		},
		{
			name:    "negative_quantity",
			item:    LineItem{Name: "bad", Quantity: dec("-1"), UnitPrice: dec("1")},
			wantErr: true,
		},
		{
			name:    "negative_price",
			item:    LineItem{Name: "bad", Quantity: dec("1"), UnitPrice: dec("-1")},
			wantErr: true,
		},
		{
			name: "percent_out_of_range",
			item: LineItem{
				Name: "bad", Quantity: dec("1"), UnitPrice: dec("1"),
				Discounts: []discount.Rule{
					{Kind: types.DiscountKindPercentage, Value: lo.ToPtr(dec("120"))},
				},
			},
			wantErr: true,
		},
		{
			name: "invalid_nested_child",
			item: LineItem{
				Name: "parent", Quantity: dec("1"), UnitPrice: dec("1"),
				AddOns: []LineItem{{Name: "child", Quantity: dec("-2"), UnitPrice: dec("1")}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate("items[0]")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
