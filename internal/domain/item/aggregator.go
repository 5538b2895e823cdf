package item

import (
	"github.com/billforge/billforge/internal/domain/discount"
	"github.com/shopspring/decimal"
)

// Line is the reported breakdown of one top-level line item after
// aggregation of its subtree.
type Line struct {
	ItemID        string          `json:"item_id"`
	Name          string          `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	GrossTotal    decimal.Decimal `json:"gross_total"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	NetTotal      decimal.Decimal `json:"net_total"`
	TaxExempt     bool            `json:"tax_exempt,omitempty"`
}

// Aggregator folds a line item tree bottom-up into monetary totals.
type Aggregator struct {
	clampDiscounts bool
	precision      int32
}

func NewAggregator(clampDiscounts bool, precision int32) *Aggregator {
	return &Aggregator{
		clampDiscounts: clampDiscounts,
		precision:      precision,
	}
}

// EvaluateAll aggregates every top-level item and returns the per-item
// lines together with the bill subtotal and the portion of the subtotal
// contributed by tax-exempt items.
func (a *Aggregator) EvaluateAll(items []LineItem) ([]Line, decimal.Decimal, decimal.Decimal) {
	lines := make([]Line, 0, len(items))
	subtotal := decimal.Zero
	exempt := decimal.Zero

	for _, li := range items {
		line := a.Evaluate(li)
		lines = append(lines, line)
		subtotal = subtotal.Add(line.NetTotal)
		if line.TaxExempt {
			exempt = exempt.Add(line.NetTotal)
		}
	}

	return lines, subtotal.Round(a.precision), exempt.Round(a.precision)
}

// Evaluate computes one item's line: unit price plus the fully evaluated
// totals of its add-ons and variations, multiplied by quantity, then each
// own discount applied against the running total in order. The result is
// not clamped to zero unless clamping is configured; a discount chain may
// legally drive an item negative.
func (a *Aggregator) Evaluate(li LineItem) Line {
	unitTotal := li.UnitPrice

	for _, child := range li.AddOns {
		unitTotal = unitTotal.Add(a.Evaluate(child).NetTotal)
	}
	for _, child := range li.Variations {
		unitTotal = unitTotal.Add(a.Evaluate(child).NetTotal)
	}

	gross := unitTotal.Mul(li.Quantity).Round(a.precision)
	net, applications := discount.Apply(li.Discounts, gross, a.clampDiscounts, a.precision)

	discountTotal := decimal.Zero
	for _, app := range applications {
		discountTotal = discountTotal.Add(app.Amount)
	}

	return Line{
		ItemID:        li.ID,
		Name:          li.Name,
		Quantity:      li.Quantity,
		UnitPrice:     li.UnitPrice,
		GrossTotal:    gross,
		DiscountTotal: discountTotal.Round(a.precision),
		NetTotal:      net.Round(a.precision),
		TaxExempt:     li.TaxExempt,
	}
}
