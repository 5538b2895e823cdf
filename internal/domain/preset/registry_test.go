package preset

import (
	"context"
	"testing"

	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/domain/tax"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(cache.NewInMemoryCache())
	require.NoError(t, RegisterBuiltins(context.Background(), r))
	return r
}

func TestResolveBuiltinBundles(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		preset    string
		rules     int
		inclusive bool
	}{
		{name: "indian_gst_split", preset: PresetINGST18, rules: 2},
		{name: "eu_vat_inclusive", preset: PresetEUVATIncl, rules: 1, inclusive: true},
		{name: "nyc_retail_stack", preset: PresetUSRetailNYC, rules: 3},
		{name: "jp_consumption_inclusive", preset: PresetJPConsumption, rules: 1, inclusive: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := r.Resolve(ctx, tt.preset)
			require.NoError(t, err)
			require.Len(t, bundle, tt.rules)
			assert.Equal(t, tt.inclusive, bundle[0].Inclusive)
			for _, rule := range bundle {
				assert.True(t, rule.Enabled)
			}
		})
	}
}

func TestResolveUnknownPresetIsValidationError(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Resolve(context.Background(), "does_not_exist")
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := NewRegistry(cache.NewInMemoryCache())

	err := r.Register(context.Background(), "", []tax.Rule{
		{Name: "x", Rate: decimal.NewFromInt(1), Enabled: true},
	})
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestRegisterReplacesByName(t *testing.T) {
	r := NewRegistry(cache.NewInMemoryCache())
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "custom", []tax.Rule{
		{Name: "old", Rate: decimal.NewFromInt(5), Enabled: true},
	}))
	require.NoError(t, r.Register(ctx, "custom", []tax.Rule{
		{Name: "new", Rate: decimal.NewFromInt(7), Enabled: true},
	}))

	bundle, err := r.Resolve(ctx, "custom")
	require.NoError(t, err)
	require.Len(t, bundle, 1)
	assert.Equal(t, "new", bundle[0].Name)

	// Still a single registry entry.
	assert.Equal(t, []string{"custom"}, r.Names())
}

func TestResolveReturnsIndependentCopies(t *testing.T) {
	r := NewRegistry(cache.NewInMemoryCache())
	ctx := context.Background()

	source := []tax.Rule{{Name: "VAT", Rate: decimal.NewFromInt(20), Enabled: true}}
	require.NoError(t, r.Register(ctx, "vat", source))

	// Mutating the caller's slice after registration must not leak in.
	source[0].Rate = decimal.NewFromInt(99)

	first, err := r.Resolve(ctx, "vat")
	require.NoError(t, err)
	assert.True(t, first[0].Rate.Equal(decimal.NewFromInt(20)))

	// Mutating a resolved copy must not affect the next resolve.
	first[0].Rate = decimal.NewFromInt(50)

	second, err := r.Resolve(ctx, "vat")
	require.NoError(t, err)
	assert.True(t, second[0].Rate.Equal(decimal.NewFromInt(20)))
}

func TestNamesAreSorted(t *testing.T) {
	r := newTestRegistry(t)

	names := r.Names()
	assert.Equal(t, []string{
		PresetEUVATIncl,
		PresetINGST18,
		PresetJPConsumption,
		PresetUSRetailNYC,
	}, names)
}
