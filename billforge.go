// Package billforge is an embeddable billing calculation engine: it
// computes a fully itemized monetary result (subtotal, discounts,
// charges, taxes, final total) from a declarative description of a sale.
//
// The engine is purely synchronous and side-effect free. Contexts are
// immutable: every With* call returns a fresh value, so independent
// calculations can run in parallel without coordination and a bill can
// be branched into alternative scenarios from one base context.
package billforge

import (
	"context"

	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/billing"
	"github.com/billforge/billforge/internal/domain/charge"
	"github.com/billforge/billforge/internal/domain/discount"
	"github.com/billforge/billforge/internal/domain/item"
	"github.com/billforge/billforge/internal/domain/preset"
	"github.com/billforge/billforge/internal/domain/tax"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/service"
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
)

// Aliases exposing the engine's data model to callers.
type (
	Context       = billing.CalculationContext
	Result        = billing.Result
	Extension     = billing.Extension
	SetupHook     = billing.SetupHook
	TransformHook = billing.TransformHook

	LineItem     = item.LineItem
	ItemLine     = item.Line
	DiscountRule = discount.Rule
	DiscountTier = discount.Tier
	ChargeRule   = charge.Rule
	ChargeLine   = charge.Line
	TaxRule      = tax.Rule
	TaxLine      = tax.Line

	Config   = types.BillingConfig
	Metadata = types.Metadata
)

// Rule kind and base constants.
const (
	DiscountFlat       = types.DiscountKindFlat
	DiscountPercentage = types.DiscountKindPercentage
	DiscountTiered     = types.DiscountKindTiered

	ChargeFlat       = types.ChargeKindFlat
	ChargePercentage = types.ChargeKindPercentage

	OnSubtotal         = types.ApplyOnSubtotal
	OnTaxableBase      = types.ApplyOnTaxableBase
	OnNetAfterDiscount = types.ApplyOnNetAfterDiscount
	OnCharges          = types.ApplyOnCharges

	PhaseBeforeCalc = types.ExtensionPhaseBeforeCalc
	PhaseAfterCalc  = types.ExtensionPhaseAfterCalc
)

// DefaultConfig returns the stock per-bill configuration: USD, currency
// display precision, rounding enabled, unclamped discounts.
func DefaultConfig() Config {
	return types.DefaultBillingConfig()
}

// Engine bundles the calculation service with its preset registry and
// logging. One engine serves any number of concurrent calculations.
type Engine struct {
	cfg      *config.Configuration
	log      *logger.Logger
	registry *preset.Registry
	svc      service.BillingService
}

// NewEngine builds an engine from the ambient configuration (config.yaml
// and BILLFORGE_ environment overrides) with the builtin tax presets
// registered.
func NewEngine() (*Engine, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	return NewEngineWithConfig(cfg)
}

// NewEngineWithConfig builds an engine from an explicit configuration.
// A nil configuration uses the defaults.
func NewEngineWithConfig(cfg *config.Configuration) (*Engine, error) {
	if cfg == nil {
		cfg = config.GetDefaultConfig()
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	validator.NewValidator()

	registry := preset.NewRegistry(cache.NewInMemoryCache())
	if err := preset.RegisterBuiltins(context.Background(), registry); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		log:      log,
		registry: registry,
	}
	e.svc = service.NewBillingService(service.ServiceParams{
		Logger:         log,
		Config:         cfg,
		PresetRegistry: registry,
	})
	return e, nil
}

// NewContext creates an empty calculation context with the engine's
// default billing configuration and a generated bill ID and number.
func (e *Engine) NewContext() Context {
	return billing.NewCalculationContext(e.cfg.DefaultBillingConfig())
}

// NewContextWithConfig creates an empty context with an explicit per-bill
// configuration.
func (e *Engine) NewContextWithConfig(cfg Config) Context {
	return billing.NewCalculationContext(cfg)
}

// Calculate runs the pipeline over an assembled context and returns a
// fresh, never-mutated result. Calling it twice on the same context
// yields identical results.
func (e *Engine) Calculate(ctx context.Context, calc Context) (*Result, error) {
	return e.svc.Calculate(ctx, calc)
}

// CalculateFromPayload validates a flat declarative JSON payload,
// resolves presets and calculates in one call.
func (e *Engine) CalculateFromPayload(ctx context.Context, payload []byte) (*Result, error) {
	return e.svc.CalculateFromPayload(ctx, payload)
}

// RegisterTaxPreset registers (or replaces) a named ordered bundle of tax
// rules for use via Config.TaxPreset.
func (e *Engine) RegisterTaxPreset(ctx context.Context, name string, rules []TaxRule) error {
	return e.registry.Register(ctx, name, rules)
}

// TaxPresetNames lists the registered preset names.
func (e *Engine) TaxPresetNames() []string {
	return e.registry.Names()
}
