package billing

import (
	"time"

	"github.com/billforge/billforge/internal/domain/charge"
	"github.com/billforge/billforge/internal/domain/discount"
	"github.com/billforge/billforge/internal/domain/item"
	"github.com/billforge/billforge/internal/domain/tax"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Result is the fully itemized outcome of one calculation. It is
// produced fresh on every Calculate call and never mutated afterward.
type Result struct {
	BillID     string    `json:"bill_id"`
	BillNumber string    `json:"bill_number"`
	CreatedAt  time.Time `json:"created_at"`
	Currency   string    `json:"currency"`

	Items    []item.Line     `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`

	Discounts     []discount.Application `json:"discounts,omitempty"`
	TotalDiscount decimal.Decimal        `json:"total_discount"`

	// TaxableBase is the subtotal minus all bill-level discounts, before
	// charges and taxes.
	TaxableBase decimal.Decimal `json:"taxable_base"`

	Charges      []charge.Line   `json:"charges,omitempty"`
	TotalCharges decimal.Decimal `json:"total_charges"`

	Taxes             []tax.Line      `json:"taxes,omitempty"`
	TotalInclusiveTax decimal.Decimal `json:"total_inclusive_tax"`
	TotalExclusiveTax decimal.Decimal `json:"total_exclusive_tax"`
	TotalTax          decimal.Decimal `json:"total_tax"`

	// RoundingResidual is rounded(total) - unrounded(total), kept for
	// audit whenever display rounding is enabled.
	RoundingResidual decimal.Decimal `json:"rounding_residual"`

	Total decimal.Decimal `json:"total"`

	// ConvertedTotals expresses Total in each configured target currency.
	ConvertedTotals map[string]decimal.Decimal `json:"converted_totals,omitempty"`

	// FormulaSteps is the human-readable audit trail of the arithmetic.
	FormulaSteps []string `json:"formula_steps,omitempty"`

	Metadata types.Metadata `json:"metadata,omitempty"`
}
