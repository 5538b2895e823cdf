package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
)

// ChargeKind represents the shape of a charge rule
type ChargeKind string

const (
	// ChargeKindFlat contributes the literal configured value
	ChargeKindFlat ChargeKind = "flat"
	// ChargeKindPercentage contributes a percentage of the selected base
	ChargeKindPercentage ChargeKind = "percentage"
)

func (k ChargeKind) String() string {
	return string(k)
}

func (k ChargeKind) Validate() error {
	allowedValues := []ChargeKind{ChargeKindFlat, ChargeKindPercentage}

	if !lo.Contains(allowedValues, k) {
		return ierr.NewError("invalid charge kind").
			WithHint("Charge kind must be either flat or percentage").
			WithReportableDetails(map[string]any{
				"allowed_values": allowedValues,
				"provided_value": k,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ApplyOnBase selects which upstream amount a charge or tax rule is
// computed against. TaxableBase and NetAfterDiscount are the same
// quantity (subtotal minus all discounts); both spellings are accepted.
type ApplyOnBase string

const (
	ApplyOnSubtotal         ApplyOnBase = "subtotal"
	ApplyOnTaxableBase      ApplyOnBase = "taxable_base"
	ApplyOnNetAfterDiscount ApplyOnBase = "net_after_discount"
	// ApplyOnCharges bases a tax rule on the already-computed charges
	// total. Only tax rules may select it, and only explicitly.
	ApplyOnCharges ApplyOnBase = "charges"
)

func (b ApplyOnBase) String() string {
	return string(b)
}

// Validate accepts the bases legal for tax rules.
func (b ApplyOnBase) Validate() error {
	allowedValues := []ApplyOnBase{
		ApplyOnSubtotal,
		ApplyOnTaxableBase,
		ApplyOnNetAfterDiscount,
		ApplyOnCharges,
	}

	if !lo.Contains(allowedValues, b) {
		return ierr.NewError("invalid apply_on base").
			WithHint("Base must be one of subtotal, taxable_base, net_after_discount or charges").
			WithReportableDetails(map[string]any{
				"allowed_values": allowedValues,
				"provided_value": b,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ValidateForCharge accepts the bases legal for charge rules. Charges
// cannot be based on other charges.
func (b ApplyOnBase) ValidateForCharge() error {
	allowedValues := []ApplyOnBase{
		ApplyOnSubtotal,
		ApplyOnTaxableBase,
		ApplyOnNetAfterDiscount,
	}

	if !lo.Contains(allowedValues, b) {
		return ierr.NewError("invalid apply_on base for charge").
			WithHint("Charge base must be one of subtotal, taxable_base or net_after_discount").
			WithReportableDetails(map[string]any{
				"allowed_values": allowedValues,
				"provided_value": b,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
