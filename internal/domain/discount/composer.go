package discount

import (
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Application records one applied discount rule for the result breakdown.
type Application struct {
	RuleID string             `json:"rule_id"`
	Kind   types.DiscountKind `json:"kind"`
	Base   decimal.Decimal    `json:"base"`
	Amount decimal.Decimal    `json:"amount"`
}

// Apply runs the rules in registration order against a running base: each
// rule sees the balance left by the previous one, which makes discount
// order observable (a tiered rule may land in a lower bracket after an
// earlier rule shrank the base). When clamp is set, a rule's amount is
// capped at the remaining balance so the result never goes negative;
// otherwise the chain may legally drive the base below zero.
func Apply(rules []Rule, base decimal.Decimal, clamp bool, precision int32) (decimal.Decimal, []Application) {
	running := base
	applications := make([]Application, 0, len(rules))

	for _, rule := range rules {
		amount := rule.AmountAgainst(running).Round(precision)
		if clamp {
			if running.LessThanOrEqual(decimal.Zero) {
				amount = decimal.Zero
			} else if amount.GreaterThan(running) {
				amount = running
			}
		}

		applications = append(applications, Application{
			RuleID: rule.ID,
			Kind:   rule.Kind,
			Base:   running,
			Amount: amount,
		})
		running = running.Sub(amount)
	}

	return running, applications
}
