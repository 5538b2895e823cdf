package preset

import (
	"context"

	"github.com/billforge/billforge/internal/domain/tax"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Builtin preset names.
const (
	PresetINGST18       = "in_gst_18"
	PresetEUVATIncl     = "eu_vat_standard"
	PresetUSRetailNYC   = "us_retail_nyc"
	PresetJPConsumption = "jp_consumption"
)

// RegisterBuiltins loads the stock tax regime bundles. Callers may
// register their own bundles on top or replace these by name.
func RegisterBuiltins(ctx context.Context, r *Registry) error {
	builtins := map[string][]tax.Rule{
		PresetINGST18: {
			{
				Name:    "CGST",
				Rate:    decimal.NewFromInt(9),
				ApplyOn: types.ApplyOnNetAfterDiscount,
				Enabled: true,
			},
			{
				Name:    "SGST",
				Rate:    decimal.NewFromInt(9),
				ApplyOn: types.ApplyOnNetAfterDiscount,
				Enabled: true,
			},
		},
		PresetEUVATIncl: {
			{
				Name:      "VAT",
				Rate:      decimal.NewFromInt(20),
				Inclusive: true,
				Enabled:   true,
			},
		},
		PresetUSRetailNYC: {
			{
				Name:    "NY State Tax",
				Rate:    decimal.NewFromInt(4),
				ApplyOn: types.ApplyOnNetAfterDiscount,
				Enabled: true,
			},
			{
				Name:    "NYC Local Tax",
				Rate:    decimal.RequireFromString("4.5"),
				ApplyOn: types.ApplyOnNetAfterDiscount,
				Enabled: true,
			},
			{
				Name:    "MCTD Surcharge",
				Rate:    decimal.RequireFromString("0.375"),
				ApplyOn: types.ApplyOnNetAfterDiscount,
				Enabled: true,
			},
		},
		PresetJPConsumption: {
			{
				Name:      "Consumption Tax",
				Rate:      decimal.NewFromInt(10),
				Inclusive: true,
				Enabled:   true,
			},
		},
	}

	for name, rules := range builtins {
		if err := r.Register(ctx, name, rules); err != nil {
			return err
		}
	}
	return nil
}
