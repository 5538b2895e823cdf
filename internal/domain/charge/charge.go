package charge

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Rule is a charge applied on top of the discounted bill, e.g. a service
// fee or packaging charge.
type Rule struct {
	Name    string            `json:"name"`
	Kind    types.ChargeKind  `json:"kind"`
	Value   decimal.Decimal   `json:"value"`
	ApplyOn types.ApplyOnBase `json:"apply_on"`
}

// Line is the reported breakdown of one applied charge.
type Line struct {
	Name    string            `json:"name"`
	Kind    types.ChargeKind  `json:"kind"`
	ApplyOn types.ApplyOnBase `json:"apply_on"`
	Base    decimal.Decimal   `json:"base"`
	Amount  decimal.Decimal   `json:"amount"`
}

// Bases carries the upstream amounts a charge rule may select.
// TaxableBase and NetAfterDiscount name the same quantity, so only one
// value is carried.
type Bases struct {
	Subtotal         decimal.Decimal
	NetAfterDiscount decimal.Decimal
}

// Apply computes every charge independently against its selected base and
// sums them. Charges never compound against each other. An unknown base
// here means validation was bypassed, so it surfaces as a calculation
// error rather than producing silent zeroes.
func Apply(rules []Rule, bases Bases, precision int32) (decimal.Decimal, []Line, error) {
	total := decimal.Zero
	lines := make([]Line, 0, len(rules))

	for _, rule := range rules {
		var base decimal.Decimal
		switch rule.ApplyOn {
		case types.ApplyOnSubtotal:
			base = bases.Subtotal
		case types.ApplyOnTaxableBase, types.ApplyOnNetAfterDiscount:
			base = bases.NetAfterDiscount
		default:
			return decimal.Zero, nil, ierr.NewError("unknown charge base").
				WithHintf("Charge %q selects unsupported base %q", rule.Name, rule.ApplyOn).
				Mark(ierr.ErrCalculation)
		}

		var amount decimal.Decimal
		switch rule.Kind {
		case types.ChargeKindFlat:
			amount = rule.Value
		case types.ChargeKindPercentage:
			amount = base.Mul(rule.Value).Div(decimal.NewFromInt(100))
		default:
			return decimal.Zero, nil, ierr.NewError("unknown charge kind").
				WithHintf("Charge %q has unsupported kind %q", rule.Name, rule.Kind).
				Mark(ierr.ErrCalculation)
		}

		amount = amount.Round(precision)
		total = total.Add(amount)
		lines = append(lines, Line{
			Name:    rule.Name,
			Kind:    rule.Kind,
			ApplyOn: rule.ApplyOn,
			Base:    base,
			Amount:  amount,
		})
	}

	return total.Round(precision), lines, nil
}
