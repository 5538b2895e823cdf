package currency

import (
	"fmt"

	"github.com/billforge/billforge/internal/domain/item"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Converter handles the two independent conversion mechanisms: per-item
// normalization into the base currency at ingestion, and the converted
// totals side table produced from the final base-currency total at
// reporting. Rates map a foreign code to the number of foreign units per
// one base unit.
type Converter struct {
	baseCurrency string
	rates        map[string]decimal.Decimal
	precision    int32
}

func NewConverter(cfg types.BillingConfig) *Converter {
	return &Converter{
		baseCurrency: cfg.Currency,
		rates:        cfg.CurrencyRates,
		precision:    cfg.ResolvedInternalPrecision(),
	}
}

// NormalizeItems returns a copy of the item trees with every foreign unit
// price divided by its configured rate. Steps describing each conversion
// are returned for the formula audit trail. A foreign code without a
// configured rate is a validation failure.
func (c *Converter) NormalizeItems(items []item.LineItem) ([]item.LineItem, []string, error) {
	out := make([]item.LineItem, len(items))
	var steps []string

	for i, li := range items {
		normalized, err := c.normalize(li.Clone(), fmt.Sprintf("items[%d]", i), &steps)
		if err != nil {
			return nil, nil, err
		}
		out[i] = normalized
	}

	return out, steps, nil
}

func (c *Converter) normalize(li item.LineItem, path string, steps *[]string) (item.LineItem, error) {
	if li.Currency != "" && li.Currency != c.baseCurrency {
		rate, ok := c.rates[li.Currency]
		if !ok {
			return li, ierr.NewErrorf("no exchange rate for currency %q", li.Currency).
				WithHintf("Item %q is priced in %q but no rate into %q is configured",
					li.Name, li.Currency, c.baseCurrency).
				WithFieldPath(path + ".currency").
				Mark(ierr.ErrValidation)
		}
		if rate.LessThanOrEqual(decimal.Zero) {
			return li, ierr.NewErrorf("non-positive exchange rate for currency %q", li.Currency).
				WithFieldPath("config.currency_rates." + li.Currency).
				Mark(ierr.ErrValidation)
		}

		converted := li.UnitPrice.DivRound(rate, c.precision)
		*steps = append(*steps, fmt.Sprintf("normalize %q: %s %s / %s = %s %s",
			li.Name, li.UnitPrice, li.Currency, rate, converted, c.baseCurrency))
		li.UnitPrice = converted
		li.Currency = c.baseCurrency
	}

	for i := range li.AddOns {
		child, err := c.normalize(li.AddOns[i], fmt.Sprintf("%s.add_ons[%d]", path, i), steps)
		if err != nil {
			return li, err
		}
		li.AddOns[i] = child
	}
	for i := range li.Variations {
		child, err := c.normalize(li.Variations[i], fmt.Sprintf("%s.variations[%d]", path, i), steps)
		if err != nil {
			return li, err
		}
		li.Variations[i] = child
	}

	return li, nil
}

// ConvertedTotals produces the side table of the final total expressed in
// every configured target currency: total × rate[code].
func (c *Converter) ConvertedTotals(total decimal.Decimal) map[string]decimal.Decimal {
	if len(c.rates) == 0 {
		return nil
	}

	out := make(map[string]decimal.Decimal, len(c.rates))
	for code, rate := range c.rates {
		out[code] = total.Mul(rate).Round(c.precision)
	}
	return out
}
