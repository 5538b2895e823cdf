package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
)

// DiscountKind represents the shape of a discount rule
type DiscountKind string

const (
	// DiscountKindFlat subtracts a literal amount from the running base
	DiscountKindFlat DiscountKind = "flat"
	// DiscountKindPercentage subtracts a percentage of the running base
	DiscountKindPercentage DiscountKind = "percentage"
	// DiscountKindTiered selects a rate by the bracket the running base falls into
	DiscountKindTiered DiscountKind = "tiered"
)

func (k DiscountKind) String() string {
	return string(k)
}

func (k DiscountKind) Validate() error {
	allowedValues := []DiscountKind{
		DiscountKindFlat,
		DiscountKindPercentage,
		DiscountKindTiered,
	}

	if !lo.Contains(allowedValues, k) {
		return ierr.NewError("invalid discount kind").
			WithHint("Discount kind must be one of flat, percentage or tiered").
			WithReportableDetails(map[string]any{
				"allowed_values": allowedValues,
				"provided_value": k,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
