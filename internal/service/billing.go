package service

import (
	"context"
	"fmt"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/billing"
	"github.com/billforge/billforge/internal/domain/charge"
	"github.com/billforge/billforge/internal/domain/currency"
	"github.com/billforge/billforge/internal/domain/discount"
	"github.com/billforge/billforge/internal/domain/item"
	"github.com/billforge/billforge/internal/domain/tax"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

type BillingService interface {
	// Calculate runs the full pipeline over an assembled context.
	Calculate(ctx context.Context, calc billing.CalculationContext) (*billing.Result, error)

	// CalculateFromPayload validates a flat declarative payload, resolves
	// presets and calculates in one call, for callers that do not need
	// the incremental or extension API.
	CalculateFromPayload(ctx context.Context, payload []byte) (*billing.Result, error)
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{
		ServiceParams: params,
	}
}

func (s *billingService) CalculateFromPayload(ctx context.Context, payload []byte) (*billing.Result, error) {
	req, err := dto.ParseCalculateBillRequest(payload)
	if err != nil {
		s.Logger.Warnw("billing payload failed to parse", "error", err)
		return nil, err
	}

	if err := req.Validate(); err != nil {
		s.Logger.Warnw("billing payload failed validation", "error", err)
		return nil, err
	}

	calc := req.ToContext(s.Config.DefaultBillingConfig())
	return s.Calculate(ctx, calc)
}

func (s *billingService) Calculate(ctx context.Context, calc billing.CalculationContext) (*billing.Result, error) {
	// Reject malformed input before any arithmetic runs.
	if err := s.validateContext(calc); err != nil {
		s.Logger.Warnw("bill rejected by validation",
			"error", err,
			"bill_id", calc.ID,
		)
		return nil, err
	}

	// Extension hooks: setup once, then the before_calc fold.
	calc, err := billing.RunSetup(calc)
	if err != nil {
		return nil, err
	}
	calc, err = billing.RunTransform(types.ExtensionPhaseBeforeCalc, calc)
	if err != nil {
		return nil, err
	}

	// Preset resolution sees the context as the hooks left it.
	taxes, err := s.resolveTaxRules(ctx, calc)
	if err != nil {
		return nil, err
	}

	cfg := calc.Config
	internalPrec := cfg.ResolvedInternalPrecision()
	displayPrec := cfg.ResolvedDisplayPrecision()

	var steps []string

	// Stage 1: normalize foreign-priced items into the base currency.
	converter := currency.NewConverter(cfg)
	items, currencySteps, err := converter.NormalizeItems(calc.Items)
	if err != nil {
		return nil, err
	}
	steps = append(steps, currencySteps...)

	// Stage 2: aggregate the item trees.
	aggregator := item.NewAggregator(cfg.ClampDiscounts, internalPrec)
	itemLines, subtotal, exemptTotal := aggregator.EvaluateAll(items)
	steps = append(steps, fmt.Sprintf("subtotal = %s", types.FormatAmount(subtotal, displayPrec)))

	// Stage 3: bill-level discounts against the running base.
	taxableBase, discountApps := discount.Apply(calc.Discounts, subtotal, cfg.ClampDiscounts, internalPrec)
	totalDiscount := decimal.Zero
	for _, app := range discountApps {
		totalDiscount = totalDiscount.Add(app.Amount)
		steps = append(steps, fmt.Sprintf("discount %q (%s) on %s = -%s",
			app.RuleID, app.Kind,
			types.FormatAmount(app.Base, displayPrec),
			types.FormatAmount(app.Amount, displayPrec)))
	}
	steps = append(steps, fmt.Sprintf("taxable base = %s", types.FormatAmount(taxableBase, displayPrec)))

	// Stage 4: charges, each independently against its selected base.
	totalCharges, chargeLines, err := charge.Apply(calc.Charges, charge.Bases{
		Subtotal:         subtotal,
		NetAfterDiscount: taxableBase,
	}, internalPrec)
	if err != nil {
		s.Logger.Errorw("charge application failed",
			"error", err,
			"bill_id", calc.ID,
		)
		return nil, err
	}
	for _, line := range chargeLines {
		steps = append(steps, fmt.Sprintf("charge %q on %s = +%s",
			line.Name,
			types.FormatAmount(line.Base, displayPrec),
			types.FormatAmount(line.Amount, displayPrec)))
	}

	// Stage 5: taxes. Tax-exempt item value is excluded from the bases;
	// the tax engine never sees it.
	taxOutcome := tax.Apply(taxes, tax.Bases{
		Subtotal:         subtotal.Sub(exemptTotal),
		NetAfterDiscount: taxableBase.Sub(exemptTotal),
		Charges:          totalCharges,
	}, internalPrec)
	for _, line := range taxOutcome.Lines {
		switch {
		case line.Disabled:
			steps = append(steps, fmt.Sprintf("tax %q skipped: disabled", line.Name))
		case line.BelowThreshold:
			steps = append(steps, fmt.Sprintf("tax %q on %s = 0.00 (below threshold)",
				line.Name, types.FormatAmount(line.Base, displayPrec)))
		case line.Inclusive:
			steps = append(steps, fmt.Sprintf("inclusive tax %q extracted from %s = %s",
				line.Name,
				types.FormatAmount(line.Base, displayPrec),
				types.FormatAmount(line.Amount, displayPrec)))
		default:
			steps = append(steps, fmt.Sprintf("tax %q on %s = +%s",
				line.Name,
				types.FormatAmount(line.Base, displayPrec),
				types.FormatAmount(line.Amount, displayPrec)))
		}
	}

	// Stage 6: totals. Inclusive tax is already embedded in the taxable
	// base and is not added again.
	total := taxableBase.Add(totalCharges).Add(taxOutcome.ExclusiveTotal)
	steps = append(steps, fmt.Sprintf("total = %s + %s + %s = %s",
		types.FormatAmount(taxableBase, displayPrec),
		types.FormatAmount(totalCharges, displayPrec),
		types.FormatAmount(taxOutcome.ExclusiveTotal, displayPrec),
		types.FormatAmount(total, displayPrec)))

	result := &billing.Result{
		BillID:            calc.ID,
		BillNumber:        calc.BillNumber,
		CreatedAt:         calc.CreatedAt,
		Currency:          cfg.Currency,
		Items:             itemLines,
		Subtotal:          subtotal,
		Discounts:         discountApps,
		TotalDiscount:     totalDiscount.Round(internalPrec),
		TaxableBase:       taxableBase,
		Charges:           chargeLines,
		TotalCharges:      totalCharges,
		Taxes:             taxOutcome.Lines,
		TotalInclusiveTax: taxOutcome.InclusiveTotal,
		TotalExclusiveTax: taxOutcome.ExclusiveTotal,
		TotalTax:          taxOutcome.TotalTax(),
		Total:             total,
		Metadata:          calc.Metadata.Clone(),
	}

	// Stage 7: reporting. Whole-bill conversion multiplier first, then
	// display rounding with the residual recorded, then the converted
	// totals side table. The side table restates the base-currency total,
	// so it is captured before the multiplier rescales the result.
	baseTotal := result.Total
	if cfg.ConversionMultiplier != nil {
		scaleResult(result, *cfg.ConversionMultiplier, internalPrec)
		steps = append(steps, fmt.Sprintf("conversion multiplier %s applied, total = %s",
			cfg.ConversionMultiplier, types.FormatAmount(result.Total, displayPrec)))
	}

	if cfg.RoundingEnabled {
		unrounded := result.Total
		roundResult(result, displayPrec)
		result.RoundingResidual = result.Total.Sub(unrounded)
		baseTotal = baseTotal.Round(displayPrec)
		steps = append(steps, fmt.Sprintf("rounding residual = %s",
			result.RoundingResidual.StringFixed(internalPrec)))
	}

	result.ConvertedTotals = converter.ConvertedTotals(baseTotal)
	if cfg.RoundingEnabled {
		for code, amount := range result.ConvertedTotals {
			result.ConvertedTotals[code] = types.RoundToCurrencyPrecision(amount, code)
		}
	}

	result.FormulaSteps = steps

	// after_calc hooks see a copy of the result; only the metadata they
	// accumulate flows back, so finalized monetary fields stay fixed.
	resultCopy := *result
	afterCtx, err := billing.RunTransform(types.ExtensionPhaseAfterCalc, calc.WithResult(&resultCopy))
	if err != nil {
		return nil, err
	}
	result.Metadata = result.Metadata.Merge(afterCtx.Metadata)

	s.Logger.Debugw("bill calculated",
		"bill_id", result.BillID,
		"bill_number", result.BillNumber,
		"subtotal", result.Subtotal,
		"total", result.Total,
	)

	return result, nil
}

// resolveTaxRules appends the configured preset bundle onto the
// caller-supplied tax list. Unknown preset names fail validation.
func (s *billingService) resolveTaxRules(ctx context.Context, calc billing.CalculationContext) ([]tax.Rule, error) {
	taxes := append([]tax.Rule(nil), calc.Taxes...)

	presetName := calc.Config.TaxPreset
	if presetName == "" {
		return taxes, nil
	}

	if s.PresetRegistry == nil {
		return nil, ierr.NewError("no tax preset registry configured").
			WithHintf("Bill requests tax preset %q but the engine has no registry", presetName).
			Mark(ierr.ErrSystem)
	}

	bundle, err := s.PresetRegistry.Resolve(ctx, presetName)
	if err != nil {
		s.Logger.Warnw("tax preset resolution failed",
			"error", err,
			"bill_id", calc.ID,
			"preset", presetName,
		)
		return nil, err
	}

	return append(taxes, bundle...), nil
}

func (s *billingService) validateContext(calc billing.CalculationContext) error {
	if err := calc.Config.Validate(); err != nil {
		return err
	}

	if len(calc.Items) == 0 {
		return ierr.NewError("bill has no line items").
			WithHint("At least one line item is required").
			WithFieldPath("items").
			Mark(ierr.ErrValidation)
	}

	for i, li := range calc.Items {
		if err := li.Validate(fmt.Sprintf("items[%d]", i)); err != nil {
			return err
		}
	}

	for i, rule := range calc.Discounts {
		if err := item.ValidateDiscountRule(rule, fmt.Sprintf("discounts[%d]", i)); err != nil {
			return err
		}
	}

	for i, rule := range calc.Charges {
		path := fmt.Sprintf("charges[%d]", i)
		if err := rule.Kind.Validate(); err != nil {
			return ierr.WithError(err).WithFieldPath(path + ".kind").Mark(ierr.ErrValidation)
		}
		if err := rule.ApplyOn.ValidateForCharge(); err != nil {
			return ierr.WithError(err).WithFieldPath(path + ".apply_on").Mark(ierr.ErrValidation)
		}
		if rule.Value.IsNegative() {
			return ierr.NewError("negative charge value").
				WithHintf("Value of charge %q must be zero or positive", rule.Name).
				WithFieldPath(path + ".value").
				Mark(ierr.ErrValidation)
		}
	}

	for i, rule := range calc.Taxes {
		if err := rule.Validate(fmt.Sprintf("taxes[%d]", i)); err != nil {
			return err
		}
	}

	return nil
}

// scaleResult applies the whole-bill conversion multiplier uniformly to
// every reported amount.
func scaleResult(r *billing.Result, multiplier decimal.Decimal, precision int32) {
	scale := func(d decimal.Decimal) decimal.Decimal {
		return d.Mul(multiplier).Round(precision)
	}

	for i := range r.Items {
		r.Items[i].UnitPrice = scale(r.Items[i].UnitPrice)
		r.Items[i].GrossTotal = scale(r.Items[i].GrossTotal)
		r.Items[i].DiscountTotal = scale(r.Items[i].DiscountTotal)
		r.Items[i].NetTotal = scale(r.Items[i].NetTotal)
	}
	for i := range r.Discounts {
		r.Discounts[i].Base = scale(r.Discounts[i].Base)
		r.Discounts[i].Amount = scale(r.Discounts[i].Amount)
	}
	for i := range r.Charges {
		r.Charges[i].Base = scale(r.Charges[i].Base)
		r.Charges[i].Amount = scale(r.Charges[i].Amount)
	}
	for i := range r.Taxes {
		r.Taxes[i].Base = scale(r.Taxes[i].Base)
		r.Taxes[i].Amount = scale(r.Taxes[i].Amount)
	}

	r.Subtotal = scale(r.Subtotal)
	r.TotalDiscount = scale(r.TotalDiscount)
	r.TaxableBase = scale(r.TaxableBase)
	r.TotalCharges = scale(r.TotalCharges)
	r.TotalInclusiveTax = scale(r.TotalInclusiveTax)
	r.TotalExclusiveTax = scale(r.TotalExclusiveTax)
	r.TotalTax = scale(r.TotalTax)
	r.Total = scale(r.Total)
}

// roundResult rounds every reported amount to the display precision.
func roundResult(r *billing.Result, precision int32) {
	round := func(d decimal.Decimal) decimal.Decimal {
		return d.Round(precision)
	}

	for i := range r.Items {
		r.Items[i].UnitPrice = round(r.Items[i].UnitPrice)
		r.Items[i].GrossTotal = round(r.Items[i].GrossTotal)
		r.Items[i].DiscountTotal = round(r.Items[i].DiscountTotal)
		r.Items[i].NetTotal = round(r.Items[i].NetTotal)
	}
	for i := range r.Discounts {
		r.Discounts[i].Base = round(r.Discounts[i].Base)
		r.Discounts[i].Amount = round(r.Discounts[i].Amount)
	}
	for i := range r.Charges {
		r.Charges[i].Base = round(r.Charges[i].Base)
		r.Charges[i].Amount = round(r.Charges[i].Amount)
	}
	for i := range r.Taxes {
		r.Taxes[i].Base = round(r.Taxes[i].Base)
		r.Taxes[i].Amount = round(r.Taxes[i].Amount)
	}

	r.Subtotal = round(r.Subtotal)
	r.TotalDiscount = round(r.TotalDiscount)
	r.TaxableBase = round(r.TaxableBase)
	r.TotalCharges = round(r.TotalCharges)
	r.TotalInclusiveTax = round(r.TotalInclusiveTax)
	r.TotalExclusiveTax = round(r.TotalExclusiveTax)
	r.TotalTax = round(r.TotalTax)
	r.Total = round(r.Total)
}
