package dto

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCalculateBillRequest(t *testing.T) {
	payload := []byte(`{
		"bill_id": "bill_custom",
		"items": [
			{
				"name": "Burger",
				"quantity": 2,
				"unit_price": "10.50",
				"add_ons": [
					{"name": "Cheese", "quantity": 1, "unit_price": 1}
				]
			}
		],
		"taxes": [
			{"name": "VAT", "rate": 18}
		]
	}`)

	req, err := ParseCalculateBillRequest(payload)
	require.NoError(t, err)
	require.NoError(t, req.Validate())

	assert.Equal(t, "bill_custom", req.BillID)
	require.Len(t, req.Items, 1)
	assert.True(t, req.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.50")))
	require.Len(t, req.Items[0].AddOns, 1)
	assert.Equal(t, "Cheese", req.Items[0].AddOns[0].Name)
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := ParseCalculateBillRequest([]byte(`{"items": [`))
	assert.Error(t, err)
}

func TestValidateRequiresItems(t *testing.T) {
	req := &CalculateBillRequest{}
	assert.Error(t, req.Validate())

	req = &CalculateBillRequest{Items: []LineItemRequest{}}
	assert.Error(t, req.Validate())
}

func TestToContextGeneratesIdentifiers(t *testing.T) {
	req := &CalculateBillRequest{
		Items: []LineItemRequest{
			{Name: "Widget", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		},
	}

	calc := req.ToContext(types.DefaultBillingConfig())

	assert.NotEmpty(t, calc.ID)
	assert.NotEmpty(t, calc.BillNumber)
	assert.False(t, calc.CreatedAt.IsZero())
	require.Len(t, calc.Items, 1)
	assert.NotEmpty(t, calc.Items[0].ID, "omitted item IDs are generated")
}

func TestToContextKeepsCallerIdentity(t *testing.T) {
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	req := &CalculateBillRequest{
		BillID:     "bill_explicit",
		BillNumber: "BF-XYZ",
		CreatedAt:  &createdAt,
		Items: []LineItemRequest{
			{ID: "sku-1", Name: "Widget", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		},
	}

	calc := req.ToContext(types.DefaultBillingConfig())

	assert.Equal(t, "bill_explicit", calc.ID)
	assert.Equal(t, "BF-XYZ", calc.BillNumber)
	assert.Equal(t, createdAt, calc.CreatedAt)
	assert.Equal(t, "sku-1", calc.Items[0].ID)
}

func TestToContextDefaults(t *testing.T) {
	req := &CalculateBillRequest{
		Items: []LineItemRequest{
			{Name: "Widget", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		},
		Charges: []ChargeRuleRequest{
			{Name: "service", Kind: "percentage", Value: decimal.NewFromInt(10)},
		},
		Taxes: []TaxRuleRequest{
			{Name: "VAT", Rate: decimal.NewFromInt(18)},
		},
	}

	calc := req.ToContext(types.DefaultBillingConfig())

	// Omitted charge base defaults to the discounted net.
	require.Len(t, calc.Charges, 1)
	assert.Equal(t, types.ApplyOnNetAfterDiscount, calc.Charges[0].ApplyOn)

	// Omitted enabled flag defaults to true.
	require.Len(t, calc.Taxes, 1)
	assert.True(t, calc.Taxes[0].Enabled)
}

func TestToContextTaxEnabledFalseSurvives(t *testing.T) {
	disabled := false
	req := &CalculateBillRequest{
		Items: []LineItemRequest{
			{Name: "Widget", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		},
		Taxes: []TaxRuleRequest{
			{Name: "off", Rate: decimal.NewFromInt(5), Enabled: &disabled},
		},
	}

	calc := req.ToContext(types.DefaultBillingConfig())
	assert.False(t, calc.Taxes[0].Enabled)
}

func TestMergedConfigLayersOverDefaults(t *testing.T) {
	displayPrec := int32(0)
	rounding := false
	req := &CalculateBillRequest{
		Items: []LineItemRequest{
			{Name: "Widget", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		},
		Config: &BillingConfigRequest{
			Currency:         "jpy",
			DisplayPrecision: &displayPrec,
			RoundingEnabled:  &rounding,
			TaxPreset:        "jp_consumption",
		},
	}

	calc := req.ToContext(types.DefaultBillingConfig())

	assert.Equal(t, "jpy", calc.Config.Currency)
	require.NotNil(t, calc.Config.DisplayPrecision)
	assert.Equal(t, int32(0), *calc.Config.DisplayPrecision)
	assert.False(t, calc.Config.RoundingEnabled)
	assert.Equal(t, "jp_consumption", calc.Config.TaxPreset)

	// Untouched defaults survive the merge.
	assert.Equal(t, types.DefaultInternalPrecision, calc.Config.InternalPrecision)
}

func TestMergedConfigWithoutOverridesIsDefaults(t *testing.T) {
	req := &CalculateBillRequest{
		Items: []LineItemRequest{
			{Name: "Widget", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		},
	}

	defaults := types.DefaultBillingConfig()
	calc := req.ToContext(defaults)

	assert.Equal(t, defaults.Currency, calc.Config.Currency)
	assert.Equal(t, defaults.RoundingEnabled, calc.Config.RoundingEnabled)
}
