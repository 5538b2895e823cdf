package discount

import (
	"sort"

	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Tier is one bracket of a tiered discount. Rate is a percentage applied
// when the running base is at least MinBase.
type Tier struct {
	MinBase decimal.Decimal `json:"min_base"`
	Rate    decimal.Decimal `json:"rate"`
}

// Rule is a discount rule in one of three shapes. Value carries the flat
// amount or the percentage depending on Kind; a nil Value contributes
// zero rather than failing.
type Rule struct {
	ID    string             `json:"id"`
	Kind  types.DiscountKind `json:"kind"`
	Value *decimal.Decimal   `json:"value,omitempty"`
	Tiers []Tier             `json:"tiers,omitempty"`
}

func (r Rule) Clone() Rule {
	out := r
	if r.Value != nil {
		out.Value = lo.ToPtr(*r.Value)
	}
	if r.Tiers != nil {
		out.Tiers = append([]Tier(nil), r.Tiers...)
	}
	return out
}

// AmountAgainst computes the rule's discount amount for the given running
// base. Tier selection sorts descending by MinBase and picks the first
// tier whose MinBase does not exceed the base, so ties resolve to the
// highest qualifying bracket. An empty tier list yields zero.
func (r Rule) AmountAgainst(base decimal.Decimal) decimal.Decimal {
	switch r.Kind {
	case types.DiscountKindFlat:
		if r.Value == nil {
			return decimal.Zero
		}
		return *r.Value
	case types.DiscountKindPercentage:
		if r.Value == nil {
			return decimal.Zero
		}
		return base.Mul(*r.Value).Div(decimal.NewFromInt(100))
	case types.DiscountKindTiered:
		tier, ok := r.selectTier(base)
		if !ok {
			return decimal.Zero
		}
		return base.Mul(tier.Rate).Div(decimal.NewFromInt(100))
	default:
		return decimal.Zero
	}
}

// selectTier returns the tier whose MinBase is the highest value still
// less than or equal to the base. Input order of tiers is irrelevant.
func (r Rule) selectTier(base decimal.Decimal) (Tier, bool) {
	if len(r.Tiers) == 0 {
		return Tier{}, false
	}

	tiers := append([]Tier(nil), r.Tiers...)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinBase.GreaterThan(tiers[j].MinBase)
	})

	for _, tier := range tiers {
		if tier.MinBase.LessThanOrEqual(base) {
			return tier, true
		}
	}
	return Tier{}, false
}
