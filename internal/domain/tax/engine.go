package tax

import (
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Bases carries the upstream amounts a tax rule may select. Tax-exempt
// item value has already been removed from Subtotal and NetAfterDiscount
// by the caller.
type Bases struct {
	Subtotal         decimal.Decimal
	NetAfterDiscount decimal.Decimal
	Charges          decimal.Decimal
}

// Outcome is the full result of the tax stage.
type Outcome struct {
	Lines []Line

	// InclusiveTotal is the tax extracted out of the running base. It is
	// already embedded in the amounts the customer sees and must not be
	// added to the bill total again.
	InclusiveTotal decimal.Decimal

	// ExclusiveTotal is the tax added on top of the bill.
	ExclusiveTotal decimal.Decimal

	// NetAfterInclusive is the running base with inclusive tax stripped;
	// exclusive rules on taxable_base / net_after_discount see this.
	NetAfterInclusive decimal.Decimal
}

func (o Outcome) TotalTax() decimal.Decimal {
	return o.InclusiveTotal.Add(o.ExclusiveTotal)
}

var oneHundred = decimal.NewFromInt(100)

// Apply runs the tax stage over the rules in their given order.
//
// Enabled rules are partitioned into inclusive and exclusive sets with
// their relative order preserved. Inclusive rules share one embedded
// amount: their rates are summed into a combined rate R, the running base
// is treated as tax-inclusive gross G, net = G / (1 + R/100), and the
// extracted total G - net is apportioned to each rule in proportion to
// its rate. Extracting each rule independently would double-count the
// shared gross. Exclusive rules then run in order against their selected
// base, with compounding against the tax accumulated so far in this pass
// and threshold gating recorded as an annotated zero line.
//
// Reported lines keep the original rule order, including disabled rules.
func Apply(rules []Rule, bases Bases, precision int32) Outcome {
	lines := make([]Line, len(rules))

	// Partition indices of enabled rules, preserving relative order.
	var inclusive, exclusive []int
	for i, rule := range rules {
		if !rule.Enabled {
			lines[i] = Line{
				Name:      rule.Name,
				Rate:      rule.Rate,
				Inclusive: rule.Inclusive,
				ApplyOn:   rule.ApplyOn,
				Amount:    decimal.Zero,
				Disabled:  true,
				Note:      "disabled",
			}
			continue
		}
		if rule.Inclusive {
			inclusive = append(inclusive, i)
		} else {
			exclusive = append(exclusive, i)
		}
	}

	// Inclusive extraction against the running base.
	gross := bases.NetAfterDiscount
	net := gross
	inclusiveTotal := decimal.Zero

	combinedRate := decimal.Zero
	for _, i := range inclusive {
		combinedRate = combinedRate.Add(rules[i].Rate)
	}

	if combinedRate.IsPositive() {
		divisor := decimal.NewFromInt(1).Add(combinedRate.Div(oneHundred))
		net = gross.DivRound(divisor, precision)
		inclusiveTotal = gross.Sub(net)

		// Proportional split; the last rule absorbs the rounding
		// remainder so the extracted parts sum back to the total.
		assigned := decimal.Zero
		for n, i := range inclusive {
			rule := rules[i]
			var amount decimal.Decimal
			if n == len(inclusive)-1 {
				amount = inclusiveTotal.Sub(assigned)
			} else {
				amount = inclusiveTotal.Mul(rule.Rate).DivRound(combinedRate, precision)
				assigned = assigned.Add(amount)
			}
			lines[i] = Line{
				Name:      rule.Name,
				Rate:      rule.Rate,
				Inclusive: true,
				Base:      gross,
				Amount:    amount,
			}
		}
	} else {
		for _, i := range inclusive {
			rule := rules[i]
			lines[i] = Line{
				Name:      rule.Name,
				Rate:      rule.Rate,
				Inclusive: true,
				Base:      gross,
				Amount:    decimal.Zero,
			}
		}
	}

	// Exclusive application in rule order.
	accumulatedTax := decimal.Zero
	exclusiveTotal := decimal.Zero

	for _, i := range exclusive {
		rule := rules[i]

		var base decimal.Decimal
		switch rule.ApplyOn {
		case types.ApplyOnSubtotal:
			base = bases.Subtotal
		case types.ApplyOnCharges:
			base = bases.Charges
		default:
			// taxable_base, net_after_discount and unset all mean the
			// running base with inclusive tax stripped.
			base = net
		}

		if rule.Compound {
			base = base.Add(accumulatedTax)
		}

		if rule.Threshold != nil && base.LessThan(*rule.Threshold) {
			lines[i] = Line{
				Name:           rule.Name,
				Rate:           rule.Rate,
				ApplyOn:        rule.ApplyOn,
				Compound:       rule.Compound,
				Base:           base,
				Amount:         decimal.Zero,
				BelowThreshold: true,
				Note:           "below threshold",
			}
			continue
		}

		amount := base.Mul(rule.Rate).Div(oneHundred).Round(precision)
		accumulatedTax = accumulatedTax.Add(amount)
		exclusiveTotal = exclusiveTotal.Add(amount)

		lines[i] = Line{
			Name:     rule.Name,
			Rate:     rule.Rate,
			ApplyOn:  rule.ApplyOn,
			Compound: rule.Compound,
			Base:     base,
			Amount:   amount,
		}
	}

	return Outcome{
		Lines:             lines,
		InclusiveTotal:    inclusiveTotal.Round(precision),
		ExclusiveTotal:    exclusiveTotal.Round(precision),
		NetAfterInclusive: net,
	}
}
