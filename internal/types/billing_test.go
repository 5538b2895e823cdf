package types

import (
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBillingConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BillingConfig)
		wantErr bool
	}{
		{
			name:   "defaults_are_valid",
			mutate: func(c *BillingConfig) {},
		},
		{
			name:    "currency_wrong_length",
			mutate:  func(c *BillingConfig) { c.Currency = "usdt" },
			wantErr: true,
		},
		{
			name:    "currency_uppercase",
			mutate:  func(c *BillingConfig) { c.Currency = "USD" },
			wantErr: true,
		},
		{
			name:    "display_precision_too_fine",
			mutate:  func(c *BillingConfig) { c.DisplayPrecision = lo.ToPtr(int32(13)) },
			wantErr: true,
		},
		{
			name: "internal_coarser_than_display",
			mutate: func(c *BillingConfig) {
				c.InternalPrecision = 2
				c.DisplayPrecision = lo.ToPtr(int32(4))
			},
			wantErr: true,
		},
		{
			name: "zero_exchange_rate",
			mutate: func(c *BillingConfig) {
				c.CurrencyRates = map[string]decimal.Decimal{"eur": decimal.Zero}
			},
			wantErr: true,
		},
		{
			name: "negative_multiplier",
			mutate: func(c *BillingConfig) {
				c.ConversionMultiplier = lo.ToPtr(decimal.NewFromInt(-1))
			},
			wantErr: true,
		},
		{
			name: "explicit_equal_precisions",
			mutate: func(c *BillingConfig) {
				c.InternalPrecision = 4
				c.DisplayPrecision = lo.ToPtr(int32(4))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBillingConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolvedPrecisions(t *testing.T) {
	cfg := DefaultBillingConfig()
	assert.Equal(t, int32(2), cfg.ResolvedDisplayPrecision(), "usd displays 2 digits")
	assert.Equal(t, DefaultInternalPrecision, cfg.ResolvedInternalPrecision())

	cfg.Currency = "jpy"
	assert.Equal(t, int32(0), cfg.ResolvedDisplayPrecision(), "jpy is a zero decimal currency")

	cfg.DisplayPrecision = lo.ToPtr(int32(4))
	assert.Equal(t, int32(4), cfg.ResolvedDisplayPrecision(), "explicit precision wins")

	cfg.InternalPrecision = 0
	assert.Equal(t, DefaultInternalPrecision, cfg.ResolvedInternalPrecision(), "zero falls back")
}

func TestBillingConfigCloneIsIndependent(t *testing.T) {
	cfg := DefaultBillingConfig()
	cfg.CurrencyRates = map[string]decimal.Decimal{"eur": decimal.NewFromInt(1)}
	cfg.ConversionMultiplier = lo.ToPtr(decimal.NewFromInt(2))

	clone := cfg.Clone()
	clone.CurrencyRates["eur"] = decimal.NewFromInt(9)
	*clone.ConversionMultiplier = decimal.NewFromInt(9)

	assert.True(t, cfg.CurrencyRates["eur"].Equal(decimal.NewFromInt(1)))
	assert.True(t, cfg.ConversionMultiplier.Equal(decimal.NewFromInt(2)))
}
