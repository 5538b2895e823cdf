package item

import (
	"fmt"

	"github.com/billforge/billforge/internal/domain/discount"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem is one node of the bill's item tree. AddOns and Variations
// recurse with the same shape; a node never references its parent, so the
// tree is owned top-down and safe to copy by value.
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`

	// Currency optionally prices this node in a foreign currency; it is
	// normalized into the bill's base currency before aggregation.
	Currency string `json:"currency,omitempty"`

	// TaxExempt excludes this item's value from tax bases downstream.
	// It has no effect on aggregation itself.
	TaxExempt bool `json:"tax_exempt,omitempty"`

	// Discounts are item-level rules applied sequentially to the item's
	// own gross total.
	Discounts []discount.Rule `json:"discounts,omitempty"`

	AddOns     []LineItem `json:"add_ons,omitempty"`
	Variations []LineItem `json:"variations,omitempty"`
}

func (li LineItem) Clone() LineItem {
	out := li
	out.Discounts = cloneRules(li.Discounts)
	out.AddOns = cloneItems(li.AddOns)
	out.Variations = cloneItems(li.Variations)
	return out
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

func cloneRules(rules []discount.Rule) []discount.Rule {
	if rules == nil {
		return nil
	}
	out := make([]discount.Rule, len(rules))
	for i, r := range rules {
		out[i] = r.Clone()
	}
	return out
}

// Validate checks the node and its subtree. path qualifies error messages
// with the item's position in the payload, e.g. "items[0].add_ons[1]".
func (li LineItem) Validate(path string) error {
	if li.Name == "" {
		return ierr.NewError("line item name is required").
			WithHint("Every line item must have a name").
			WithFieldPath(path + ".name").
			Mark(ierr.ErrValidation)
	}

	if li.Quantity.IsNegative() {
		return ierr.NewError("negative quantity").
			WithHintf("Quantity of %q must be zero or positive", li.Name).
			WithFieldPath(path + ".quantity").
			Mark(ierr.ErrValidation)
	}

	if li.UnitPrice.IsNegative() {
		return ierr.NewError("negative unit price").
			WithHintf("Unit price of %q must be zero or positive", li.Name).
			WithFieldPath(path + ".unit_price").
			Mark(ierr.ErrValidation)
	}

	for i, rule := range li.Discounts {
		if err := validateDiscountRule(rule, fmt.Sprintf("%s.discounts[%d]", path, i)); err != nil {
			return err
		}
	}

	for i, child := range li.AddOns {
		if err := child.Validate(fmt.Sprintf("%s.add_ons[%d]", path, i)); err != nil {
			return err
		}
	}
	for i, child := range li.Variations {
		if err := child.Validate(fmt.Sprintf("%s.variations[%d]", path, i)); err != nil {
			return err
		}
	}

	return nil
}

func validateDiscountRule(rule discount.Rule, path string) error {
	if err := rule.Kind.Validate(); err != nil {
		return ierr.WithError(err).
			WithFieldPath(path + ".kind").
			Mark(ierr.ErrValidation)
	}

	if rule.Value != nil && rule.Value.IsNegative() {
		return ierr.NewError("negative discount value").
			WithHint("Discount value must be zero or positive").
			WithFieldPath(path + ".value").
			Mark(ierr.ErrValidation)
	}

	if rule.Kind == types.DiscountKindPercentage && rule.Value != nil &&
		rule.Value.GreaterThan(decimal.NewFromInt(100)) {
		return ierr.NewError("discount percent out of range").
			WithHint("Discount percent must be between 0 and 100").
			WithFieldPath(path + ".value").
			Mark(ierr.ErrValidation)
	}

	for i, tier := range rule.Tiers {
		if tier.Rate.IsNegative() || tier.Rate.GreaterThan(decimal.NewFromInt(100)) {
			return ierr.NewError("tier rate out of range").
				WithHint("Tier rates must be between 0 and 100").
				WithFieldPath(fmt.Sprintf("%s.tiers[%d].rate", path, i)).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// ValidateDiscountRule exposes the shared discount rule checks for
// bill-level rules, which use the same shape and constraints.
func ValidateDiscountRule(rule discount.Rule, path string) error {
	return validateDiscountRule(rule, path)
}
