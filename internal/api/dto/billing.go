package dto

import (
	"time"

	"github.com/billforge/billforge/internal/domain/billing"
	"github.com/billforge/billforge/internal/domain/charge"
	"github.com/billforge/billforge/internal/domain/discount"
	"github.com/billforge/billforge/internal/domain/item"
	"github.com/billforge/billforge/internal/domain/tax"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CalculateBillRequest is the flat declarative payload accepted by the
// single-call API. Deep structural checks (ranges, enums, field paths)
// run in the calculation service; this layer rejects shape problems.
type CalculateBillRequest struct {
	// BillID, BillNumber and CreatedAt are generated when omitted.
	BillID     string     `json:"bill_id,omitempty"`
	BillNumber string     `json:"bill_number,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`

	Items     []LineItemRequest     `json:"items" validate:"required,min=1"`
	Discounts []DiscountRuleRequest `json:"discounts,omitempty"`
	Charges   []ChargeRuleRequest   `json:"charges,omitempty"`
	Taxes     []TaxRuleRequest      `json:"taxes,omitempty"`

	Config   *BillingConfigRequest `json:"config,omitempty"`
	Metadata map[string]string     `json:"metadata,omitempty"`
}

type LineItemRequest struct {
	ID         string                `json:"id,omitempty"`
	Name       string                `json:"name" validate:"required"`
	Quantity   decimal.Decimal       `json:"quantity"`
	UnitPrice  decimal.Decimal       `json:"unit_price"`
	Currency   string                `json:"currency,omitempty"`
	TaxExempt  bool                  `json:"tax_exempt,omitempty"`
	Discounts  []DiscountRuleRequest `json:"discounts,omitempty"`
	AddOns     []LineItemRequest     `json:"add_ons,omitempty"`
	Variations []LineItemRequest     `json:"variations,omitempty"`
}

type DiscountRuleRequest struct {
	ID    string                `json:"id,omitempty"`
	Kind  string                `json:"kind" validate:"required"`
	Value *decimal.Decimal      `json:"value,omitempty"`
	Tiers []DiscountTierRequest `json:"tiers,omitempty"`
}

type DiscountTierRequest struct {
	MinBase decimal.Decimal `json:"min_base"`
	Rate    decimal.Decimal `json:"rate"`
}

type ChargeRuleRequest struct {
	Name    string          `json:"name" validate:"required"`
	Kind    string          `json:"kind" validate:"required"`
	Value   decimal.Decimal `json:"value"`
	ApplyOn string          `json:"apply_on,omitempty"`
}

type TaxRuleRequest struct {
	Name      string           `json:"name" validate:"required"`
	Rate      decimal.Decimal  `json:"rate"`
	Inclusive bool             `json:"inclusive,omitempty"`
	ApplyOn   string           `json:"apply_on,omitempty"`
	Compound  bool             `json:"compound,omitempty"`
	Threshold *decimal.Decimal `json:"threshold,omitempty"`

	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled,omitempty"`
}

type BillingConfigRequest struct {
	Currency             string                     `json:"currency,omitempty"`
	DisplayPrecision     *int32                     `json:"display_precision,omitempty"`
	InternalPrecision    *int32                     `json:"internal_precision,omitempty"`
	RoundingEnabled      *bool                      `json:"rounding_enabled,omitempty"`
	ClampDiscounts       *bool                      `json:"clamp_discounts,omitempty"`
	CurrencyRates        map[string]decimal.Decimal `json:"currency_rates,omitempty"`
	ConversionMultiplier *decimal.Decimal           `json:"conversion_multiplier,omitempty"`
	TaxPreset            string                     `json:"tax_preset,omitempty"`
}

// ParseCalculateBillRequest decodes the raw payload.
func ParseCalculateBillRequest(data []byte) (*CalculateBillRequest, error) {
	var req CalculateBillRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Billing payload is not valid JSON").
			Mark(ierr.ErrValidation)
	}
	return &req, nil
}

func (r *CalculateBillRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToContext assembles the immutable calculation context, layering the
// payload's config over the engine defaults and generating identifiers
// for anything the caller omitted.
func (r *CalculateBillRequest) ToContext(defaults types.BillingConfig) billing.CalculationContext {
	cfg := r.mergedConfig(defaults)

	calc := billing.NewCalculationContext(cfg)
	if r.BillID != "" {
		calc.ID = r.BillID
	}
	if r.BillNumber != "" {
		calc.BillNumber = r.BillNumber
	}
	if r.CreatedAt != nil {
		calc.CreatedAt = r.CreatedAt.UTC()
	}

	calc.Items = lo.Map(r.Items, func(li LineItemRequest, _ int) item.LineItem {
		return li.toLineItem()
	})
	calc.Discounts = lo.Map(r.Discounts, func(d DiscountRuleRequest, _ int) discount.Rule {
		return d.toRule()
	})
	calc.Charges = lo.Map(r.Charges, func(c ChargeRuleRequest, _ int) charge.Rule {
		return c.toRule()
	})
	calc.Taxes = lo.Map(r.Taxes, func(t TaxRuleRequest, _ int) tax.Rule {
		return t.toRule()
	})

	if r.Metadata != nil {
		calc.Metadata = calc.Metadata.Merge(r.Metadata)
	}

	return calc
}

func (r *CalculateBillRequest) mergedConfig(defaults types.BillingConfig) types.BillingConfig {
	cfg := defaults.Clone()
	if r.Config == nil {
		return cfg
	}

	req := r.Config
	if req.Currency != "" {
		cfg.Currency = req.Currency
	}
	if req.DisplayPrecision != nil {
		cfg.DisplayPrecision = lo.ToPtr(*req.DisplayPrecision)
	}
	if req.InternalPrecision != nil {
		cfg.InternalPrecision = *req.InternalPrecision
	}
	if req.RoundingEnabled != nil {
		cfg.RoundingEnabled = *req.RoundingEnabled
	}
	if req.ClampDiscounts != nil {
		cfg.ClampDiscounts = *req.ClampDiscounts
	}
	if req.CurrencyRates != nil {
		cfg.CurrencyRates = lo.Assign(map[string]decimal.Decimal{}, req.CurrencyRates)
	}
	if req.ConversionMultiplier != nil {
		cfg.ConversionMultiplier = lo.ToPtr(*req.ConversionMultiplier)
	}
	if req.TaxPreset != "" {
		cfg.TaxPreset = req.TaxPreset
	}

	return cfg
}

func (li LineItemRequest) toLineItem() item.LineItem {
	id := li.ID
	if id == "" {
		id = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILL_LINE_ITEM)
	}
	return item.LineItem{
		ID:        id,
		Name:      li.Name,
		Quantity:  li.Quantity,
		UnitPrice: li.UnitPrice,
		Currency:  li.Currency,
		TaxExempt: li.TaxExempt,
		Discounts: lo.Map(li.Discounts, func(d DiscountRuleRequest, _ int) discount.Rule {
			return d.toRule()
		}),
		AddOns: lo.Map(li.AddOns, func(c LineItemRequest, _ int) item.LineItem {
			return c.toLineItem()
		}),
		Variations: lo.Map(li.Variations, func(c LineItemRequest, _ int) item.LineItem {
			return c.toLineItem()
		}),
	}
}

func (d DiscountRuleRequest) toRule() discount.Rule {
	rule := discount.Rule{
		ID:   d.ID,
		Kind: types.DiscountKind(d.Kind),
	}
	if rule.ID == "" {
		rule.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DISCOUNT_RULE)
	}
	if d.Value != nil {
		rule.Value = lo.ToPtr(*d.Value)
	}
	rule.Tiers = lo.Map(d.Tiers, func(t DiscountTierRequest, _ int) discount.Tier {
		return discount.Tier{MinBase: t.MinBase, Rate: t.Rate}
	})
	return rule
}

func (c ChargeRuleRequest) toRule() charge.Rule {
	applyOn := types.ApplyOnBase(c.ApplyOn)
	if applyOn == "" {
		applyOn = types.ApplyOnNetAfterDiscount
	}
	return charge.Rule{
		Name:    c.Name,
		Kind:    types.ChargeKind(c.Kind),
		Value:   c.Value,
		ApplyOn: applyOn,
	}
}

func (t TaxRuleRequest) toRule() tax.Rule {
	rule := tax.Rule{
		Name:      t.Name,
		Rate:      t.Rate,
		Inclusive: t.Inclusive,
		ApplyOn:   types.ApplyOnBase(t.ApplyOn),
		Compound:  t.Compound,
		Enabled:   lo.FromPtrOr(t.Enabled, true),
	}
	if t.Threshold != nil {
		rule.Threshold = lo.ToPtr(*t.Threshold)
	}
	return rule
}
