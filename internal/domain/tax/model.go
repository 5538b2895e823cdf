package tax

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Rule is one tax rule. Order within the bill's tax list is significant:
// it defines both the application sequence and what a compound rule sees.
type Rule struct {
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`

	// Inclusive marks a tax already embedded in the displayed prices;
	// the engine reverse-extracts it instead of adding it.
	Inclusive bool `json:"inclusive"`

	// ApplyOn selects the base for exclusive rules. ApplyOnCharges must
	// be requested explicitly; it is never implied.
	ApplyOn types.ApplyOnBase `json:"apply_on"`

	// Compound adds the tax accumulated by earlier exclusive rules to
	// this rule's base before computing.
	Compound bool `json:"compound"`

	// Threshold gates the rule: when the effective base is below it the
	// rule contributes zero and is annotated, never silently skipped.
	Threshold *decimal.Decimal `json:"threshold,omitempty"`

	Enabled bool `json:"enabled"`
}

func (r Rule) Clone() Rule {
	out := r
	if r.Threshold != nil {
		out.Threshold = lo.ToPtr(*r.Threshold)
	}
	return out
}

// Validate checks a rule's static constraints. path qualifies error
// messages with the rule's position in the payload.
func (r Rule) Validate(path string) error {
	if r.Name == "" {
		return ierr.NewError("tax rule name is required").
			WithHint("Every tax rule must have a name").
			WithFieldPath(path + ".name").
			Mark(ierr.ErrValidation)
	}

	if r.Rate.IsNegative() {
		return ierr.NewError("negative tax rate").
			WithHintf("Rate of tax rule %q must be zero or positive", r.Name).
			WithFieldPath(path + ".rate").
			Mark(ierr.ErrValidation)
	}

	if r.ApplyOn != "" {
		if err := r.ApplyOn.Validate(); err != nil {
			return ierr.WithError(err).
				WithFieldPath(path + ".apply_on").
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// Line is the reported breakdown of one tax rule, including zero-effect
// outcomes (disabled, zero rate, below threshold) which are legitimate
// results rather than errors.
type Line struct {
	Name           string            `json:"name"`
	Rate           decimal.Decimal   `json:"rate"`
	Inclusive      bool              `json:"inclusive"`
	ApplyOn        types.ApplyOnBase `json:"apply_on,omitempty"`
	Compound       bool              `json:"compound,omitempty"`
	Base           decimal.Decimal   `json:"base"`
	Amount         decimal.Decimal   `json:"amount"`
	BelowThreshold bool              `json:"below_threshold,omitempty"`
	Disabled       bool              `json:"disabled,omitempty"`
	Note           string            `json:"note,omitempty"`
}
