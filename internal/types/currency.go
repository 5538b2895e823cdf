package types

import "github.com/shopspring/decimal"

// CURRENCY_CODES_SYMBOLS is a map of 3 digit ISO currency codes to their symbols
// TODO add more currencies or look for a library
var CURRENCY_CODES_SYMBOLS = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"aud": "AU$",
	"cad": "CA$",
	"chf": "CHF",
	"sek": "kr",
	"nzd": "NZ$",
	"hkd": "HK$",
	"sgd": "S$",
	"jpy": "¥",
	"cny": "¥",
	"inr": "₹",
	"brl": "R$",
	"rub": "₽",
	"mxn": "MX$",
	"krw": "₩",
	"try": "₺",
	"zar": "R",
	"myr": "RM",
}

// zero-decimal currencies are always displayed as whole units
var zeroDecimalCurrencies = map[string]struct{}{
	"jpy": {},
	"krw": {},
	"vnd": {},
	"clp": {},
	"isk": {},
}

// three-decimal currencies use mils rather than cents
var threeDecimalCurrencies = map[string]struct{}{
	"bhd": {},
	"kwd": {},
	"omr": {},
	"tnd": {},
}

// GetCurrencySymbol returns the symbol for a given currency code
// if the code is not found, it returns the code itself
func GetCurrencySymbol(code string) string {
	if symbol, ok := CURRENCY_CODES_SYMBOLS[code]; ok {
		return symbol
	}
	return code
}

// GetCurrencyPrecision returns the number of display decimal places
// for a currency code. Unknown codes default to 2.
func GetCurrencyPrecision(code string) int32 {
	if _, ok := zeroDecimalCurrencies[code]; ok {
		return 0
	}
	if _, ok := threeDecimalCurrencies[code]; ok {
		return 3
	}
	return 2
}

// RoundToCurrencyPrecision rounds an amount half-up to the display
// precision of the given currency code.
func RoundToCurrencyPrecision(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(GetCurrencyPrecision(code))
}
