package billing

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// Extension is an ordered capability object registered on a context.
// Both hooks are optional: an extension implements SetupHook and/or
// TransformHook, and anything it does not implement passes the context
// through unchanged. Hooks run inline on the calculation's call stack,
// so they must not block or do long-running work.
type Extension interface {
	Name() string
}

// SetupHook runs once per calculation, in registration order, before any
// arithmetic.
type SetupHook interface {
	Extension
	Setup(ctx CalculationContext) (CalculationContext, error)
}

// TransformHook runs per phase; after_calc invocations see ctx.Result.
type TransformHook interface {
	Extension
	Transform(phase types.ExtensionPhase, ctx CalculationContext) (CalculationContext, error)
}

// RunSetup left-folds the setup hooks over the context: each hook
// receives the context produced by the previous one.
func RunSetup(ctx CalculationContext) (CalculationContext, error) {
	for _, ext := range ctx.Extensions {
		hook, ok := ext.(SetupHook)
		if !ok {
			continue
		}
		next, err := hook.Setup(ctx)
		if err != nil {
			return ctx, ierr.WithError(err).
				WithHintf("Extension %q failed during setup", ext.Name()).
				Mark(ierr.ErrInvalidOperation)
		}
		next.Extensions = ctx.Extensions
		ctx = next
	}
	return ctx, nil
}

// RunTransform left-folds the transform hooks for one phase.
func RunTransform(phase types.ExtensionPhase, ctx CalculationContext) (CalculationContext, error) {
	for _, ext := range ctx.Extensions {
		hook, ok := ext.(TransformHook)
		if !ok {
			continue
		}
		next, err := hook.Transform(phase, ctx)
		if err != nil {
			return ctx, ierr.WithError(err).
				WithHintf("Extension %q failed during %s", ext.Name(), phase).
				Mark(ierr.ErrInvalidOperation)
		}
		next.Extensions = ctx.Extensions
		next.Result = ctx.Result
		ctx = next
	}
	return ctx, nil
}
