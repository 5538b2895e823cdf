package types

import "github.com/shopspring/decimal"

const (
	// DefaultInternalPrecision is the number of fractional digits carried
	// between pipeline stages. Finer than any display precision so that
	// rounding error does not compound across stages.
	DefaultInternalPrecision int32 = 6

	// MaxInternalPrecision bounds the configurable internal precision.
	MaxInternalPrecision int32 = 12
)

// RoundToPrecision rounds half-up to the given number of fractional digits.
func RoundToPrecision(amount decimal.Decimal, places int32) decimal.Decimal {
	return amount.Round(places)
}

// FormatAmount renders an amount with a fixed number of fractional digits
// for formula steps and other human-readable output.
func FormatAmount(amount decimal.Decimal, places int32) string {
	return amount.StringFixed(places)
}
