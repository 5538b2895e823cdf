package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
)

// ExtensionPhase identifies where in the calculation an extension
// transform hook runs.
type ExtensionPhase string

const (
	// ExtensionPhaseBeforeCalc runs after setup, before any arithmetic
	ExtensionPhaseBeforeCalc ExtensionPhase = "before_calc"
	// ExtensionPhaseAfterCalc runs with the computed result attached
	ExtensionPhaseAfterCalc ExtensionPhase = "after_calc"
)

func (p ExtensionPhase) String() string {
	return string(p)
}

func (p ExtensionPhase) Validate() error {
	allowedValues := []ExtensionPhase{
		ExtensionPhaseBeforeCalc,
		ExtensionPhaseAfterCalc,
	}

	if !lo.Contains(allowedValues, p) {
		return ierr.NewError("invalid extension phase").
			WithHint("Extension phase must be either before_calc or after_calc").
			WithReportableDetails(map[string]any{
				"allowed_values": allowedValues,
				"provided_value": p,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
