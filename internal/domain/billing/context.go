package billing

import (
	"time"

	"github.com/billforge/billforge/internal/domain/charge"
	"github.com/billforge/billforge/internal/domain/discount"
	"github.com/billforge/billforge/internal/domain/item"
	"github.com/billforge/billforge/internal/domain/tax"
	"github.com/billforge/billforge/internal/types"
)

// CalculationContext is the immutable aggregate describing one bill.
// Every With* method returns a fresh copy; a context value is never
// mutated in place, so prior contexts stay valid and a bill can be
// branched into alternative scenarios from the same base.
type CalculationContext struct {
	ID         string              `json:"id"`
	BillNumber string              `json:"bill_number"`
	CreatedAt  time.Time           `json:"created_at"`
	Config     types.BillingConfig `json:"config"`

	Items      []item.LineItem `json:"items"`
	Discounts  []discount.Rule `json:"discounts,omitempty"`
	Charges    []charge.Rule   `json:"charges,omitempty"`
	Taxes      []tax.Rule      `json:"taxes,omitempty"`
	Extensions []Extension     `json:"-"`
	Metadata   types.Metadata  `json:"metadata,omitempty"`

	// Result is only set on the copy handed to after_calc hooks so they
	// can read the computed amounts while enriching metadata.
	Result *Result `json:"-"`
}

// NewCalculationContext creates a context with a generated bill ID,
// display bill number and UTC creation time.
func NewCalculationContext(cfg types.BillingConfig) CalculationContext {
	return CalculationContext{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILL),
		BillNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_BILL),
		CreatedAt:  time.Now().UTC(),
		Config:     cfg.Clone(),
		Metadata:   types.Metadata{},
	}
}

// clone copies the context with fresh slice headers so appends on the
// copy never alias the original. Elements are cloned too: the aggregate
// is small enough that full structural copying beats shared structure.
func (c CalculationContext) clone() CalculationContext {
	out := c
	out.Config = c.Config.Clone()
	out.Metadata = c.Metadata.Clone()

	if c.Items != nil {
		out.Items = make([]item.LineItem, len(c.Items))
		for i, li := range c.Items {
			out.Items[i] = li.Clone()
		}
	}
	if c.Discounts != nil {
		out.Discounts = make([]discount.Rule, len(c.Discounts))
		for i, r := range c.Discounts {
			out.Discounts[i] = r.Clone()
		}
	}
	if c.Charges != nil {
		out.Charges = append([]charge.Rule(nil), c.Charges...)
	}
	if c.Taxes != nil {
		out.Taxes = make([]tax.Rule, len(c.Taxes))
		for i, r := range c.Taxes {
			out.Taxes[i] = r.Clone()
		}
	}
	if c.Extensions != nil {
		out.Extensions = append([]Extension(nil), c.Extensions...)
	}

	return out
}

// WithItem returns a copy of the context with the item appended.
func (c CalculationContext) WithItem(li item.LineItem) CalculationContext {
	out := c.clone()
	out.Items = append(out.Items, li.Clone())
	return out
}

// WithDiscount returns a copy with the bill-level discount rule appended.
func (c CalculationContext) WithDiscount(rule discount.Rule) CalculationContext {
	out := c.clone()
	out.Discounts = append(out.Discounts, rule.Clone())
	return out
}

// WithCharge returns a copy with the charge rule appended.
func (c CalculationContext) WithCharge(rule charge.Rule) CalculationContext {
	out := c.clone()
	out.Charges = append(out.Charges, rule)
	return out
}

// WithTax returns a copy with the tax rule appended.
func (c CalculationContext) WithTax(rule tax.Rule) CalculationContext {
	out := c.clone()
	out.Taxes = append(out.Taxes, rule.Clone())
	return out
}

// WithExtensions returns a copy with the extensions appended in order.
func (c CalculationContext) WithExtensions(exts ...Extension) CalculationContext {
	out := c.clone()
	out.Extensions = append(out.Extensions, exts...)
	return out
}

// WithMetadata returns a copy with the key set.
func (c CalculationContext) WithMetadata(key, value string) CalculationContext {
	out := c.clone()
	out.Metadata[key] = value
	return out
}

// WithResult returns a copy carrying the computed result, for after_calc
// hooks.
func (c CalculationContext) WithResult(r *Result) CalculationContext {
	out := c.clone()
	out.Result = r
	return out
}
