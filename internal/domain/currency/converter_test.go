package currency

import (
	"testing"

	"github.com/billforge/billforge/internal/domain/item"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func usdConfig(rates map[string]decimal.Decimal) types.BillingConfig {
	cfg := types.DefaultBillingConfig()
	cfg.CurrencyRates = rates
	return cfg
}

func TestNormalizeForeignPricedItem(t *testing.T) {
	c := NewConverter(usdConfig(map[string]decimal.Decimal{
		"eur": dec("1.1"),
	}))

	items, steps, err := c.NormalizeItems([]item.LineItem{
		{Name: "Imported", Quantity: dec("1"), UnitPrice: dec("100"), Currency: "eur"},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	// 100 eur at 1.1 eur per usd is 90.909091 usd at internal precision.
	assert.True(t, items[0].UnitPrice.Equal(dec("90.909091")),
		"expected 90.909091, got %s", items[0].UnitPrice)
	assert.Equal(t, "usd", items[0].Currency)
	assert.Len(t, steps, 1)
}

func TestNormalizeLeavesBaseCurrencyAlone(t *testing.T) {
	c := NewConverter(usdConfig(map[string]decimal.Decimal{
		"eur": dec("1.1"),
	}))

	items, steps, err := c.NormalizeItems([]item.LineItem{
		{Name: "Local", Quantity: dec("1"), UnitPrice: dec("50"), Currency: "usd"},
		{Name: "Unmarked", Quantity: dec("1"), UnitPrice: dec("25")},
	})
	require.NoError(t, err)

	assert.True(t, items[0].UnitPrice.Equal(dec("50")))
	assert.True(t, items[1].UnitPrice.Equal(dec("25")))
	assert.Empty(t, steps)
}

func TestNormalizeRecursesIntoChildren(t *testing.T) {
	c := NewConverter(usdConfig(map[string]decimal.Decimal{
		"gbp": dec("0.8"),
	}))

	items, _, err := c.NormalizeItems([]item.LineItem{
		{
			Name: "Kit", Quantity: dec("1"), UnitPrice: dec("10"),
			AddOns: []item.LineItem{
				{Name: "Import part", Quantity: dec("1"), UnitPrice: dec("8"), Currency: "gbp"},
			},
		},
	})
	require.NoError(t, err)

	// 8 gbp at 0.8 gbp per usd is 10 usd.
	assert.True(t, items[0].AddOns[0].UnitPrice.Equal(dec("10")))
	assert.Equal(t, "usd", items[0].AddOns[0].Currency)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	c := NewConverter(usdConfig(map[string]decimal.Decimal{
		"eur": dec("2"),
	}))

	original := []item.LineItem{
		{Name: "Imported", Quantity: dec("1"), UnitPrice: dec("100"), Currency: "eur"},
	}

	_, _, err := c.NormalizeItems(original)
	require.NoError(t, err)

	assert.True(t, original[0].UnitPrice.Equal(dec("100")))
	assert.Equal(t, "eur", original[0].Currency)
}

func TestNormalizeMissingRateIsValidationError(t *testing.T) {
	c := NewConverter(usdConfig(nil))

	_, _, err := c.NormalizeItems([]item.LineItem{
		{Name: "Orphan", Quantity: dec("1"), UnitPrice: dec("10"), Currency: "eur"},
	})
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestConvertedTotalsMultiplyByRate(t *testing.T) {
	c := NewConverter(usdConfig(map[string]decimal.Decimal{
		"eur": dec("1.1"),
		"jpy": dec("150"),
	}))

	totals := c.ConvertedTotals(dec("90.91"))
	require.Len(t, totals, 2)

	assert.True(t, totals["eur"].Equal(dec("100.001")),
		"expected 100.001, got %s", totals["eur"])
	assert.True(t, totals["jpy"].Equal(dec("13636.5")))
}

func TestConvertedTotalsNilWithoutRates(t *testing.T) {
	c := NewConverter(usdConfig(nil))
	assert.Nil(t, c.ConvertedTotals(dec("100")))
}
