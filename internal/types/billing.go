package types

import (
	"strings"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// BillingConfig carries the per-bill knobs of the calculation engine.
// Zero values fall back to engine defaults where documented.
type BillingConfig struct {
	// Currency is the 3 letter ISO code of the bill's base currency,
	// lowercase ("usd", "eur", ...).
	Currency string `json:"currency"`

	// DisplayPrecision is the number of fractional digits for reported
	// amounts. Nil means the display precision of Currency.
	DisplayPrecision *int32 `json:"display_precision,omitempty"`

	// InternalPrecision is the number of fractional digits carried
	// between pipeline stages. Zero means DefaultInternalPrecision.
	InternalPrecision int32 `json:"internal_precision,omitempty"`

	// RoundingEnabled controls display rounding of the result. When set,
	// the difference between the rounded and unrounded total is reported
	// as the rounding residual; it is never silently dropped.
	RoundingEnabled bool `json:"rounding_enabled"`

	// ClampDiscounts caps every discount at the remaining balance so a
	// discount chain can never drive a total negative. Default false:
	// the engine is permissive and negative totals are legal.
	ClampDiscounts bool `json:"clamp_discounts"`

	// CurrencyRates maps a foreign currency code to the number of
	// foreign units per one unit of the base currency. Used both to
	// normalize foreign-priced items at ingestion and to produce the
	// converted-totals side table at reporting.
	CurrencyRates map[string]decimal.Decimal `json:"currency_rates,omitempty"`

	// ConversionMultiplier, when set, is applied uniformly to every
	// reported amount at the final rounding step.
	ConversionMultiplier *decimal.Decimal `json:"conversion_multiplier,omitempty"`

	// TaxPreset names an ordered bundle of tax rules appended to the
	// caller-supplied tax list. Unknown names fail validation.
	TaxPreset string `json:"tax_preset,omitempty"`
}

// DefaultBillingConfig returns the engine defaults: USD, currency display
// precision, 6 digit internal precision, rounding on, unclamped discounts.
func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		Currency:          "usd",
		InternalPrecision: DefaultInternalPrecision,
		RoundingEnabled:   true,
	}
}

// ResolvedDisplayPrecision returns the effective display precision.
func (c BillingConfig) ResolvedDisplayPrecision() int32 {
	if c.DisplayPrecision != nil {
		return *c.DisplayPrecision
	}
	return GetCurrencyPrecision(c.Currency)
}

// ResolvedInternalPrecision returns the effective internal precision.
func (c BillingConfig) ResolvedInternalPrecision() int32 {
	if c.InternalPrecision <= 0 {
		return DefaultInternalPrecision
	}
	return c.InternalPrecision
}

// Clone returns an independent copy of the config, including the rates map.
func (c BillingConfig) Clone() BillingConfig {
	out := c
	if c.CurrencyRates != nil {
		out.CurrencyRates = lo.Assign(map[string]decimal.Decimal{}, c.CurrencyRates)
	}
	if c.ConversionMultiplier != nil {
		out.ConversionMultiplier = lo.ToPtr(*c.ConversionMultiplier)
	}
	return out
}

func (c BillingConfig) Validate() error {
	if len(c.Currency) != 3 {
		return ierr.NewError("invalid currency code").
			WithHint("Currency must be a 3 letter ISO code").
			WithFieldPath("config.currency").
			Mark(ierr.ErrValidation)
	}

	if c.Currency != strings.ToLower(c.Currency) {
		return ierr.NewError("currency code must be lowercase").
			WithHintf("Use %q instead of %q", strings.ToLower(c.Currency), c.Currency).
			WithFieldPath("config.currency").
			Mark(ierr.ErrValidation)
	}

	if c.DisplayPrecision != nil && (*c.DisplayPrecision < 0 || *c.DisplayPrecision > MaxInternalPrecision) {
		return ierr.NewError("display precision out of range").
			WithHintf("Display precision must be between 0 and %d", MaxInternalPrecision).
			WithFieldPath("config.display_precision").
			Mark(ierr.ErrValidation)
	}

	if c.InternalPrecision < 0 || c.InternalPrecision > MaxInternalPrecision {
		return ierr.NewError("internal precision out of range").
			WithHintf("Internal precision must be between 0 and %d", MaxInternalPrecision).
			WithFieldPath("config.internal_precision").
			Mark(ierr.ErrValidation)
	}

	if c.ResolvedInternalPrecision() < c.ResolvedDisplayPrecision() {
		return ierr.NewError("internal precision coarser than display precision").
			WithHint("Internal precision must be at least the display precision").
			WithFieldPath("config.internal_precision").
			Mark(ierr.ErrValidation)
	}

	for code, rate := range c.CurrencyRates {
		if rate.LessThanOrEqual(decimal.Zero) {
			return ierr.NewError("non-positive exchange rate").
				WithHintf("Exchange rate for %q must be greater than zero", code).
				WithFieldPath("config.currency_rates." + code).
				Mark(ierr.ErrValidation)
		}
	}

	if c.ConversionMultiplier != nil && c.ConversionMultiplier.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("non-positive conversion multiplier").
			WithHint("Conversion multiplier must be greater than zero").
			WithFieldPath("config.conversion_multiplier").
			Mark(ierr.ErrValidation)
	}

	return nil
}
