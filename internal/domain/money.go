package domain

import "github.com/shopspring/decimal"

func init() {
	// Amounts travel as JSON numbers, matching what API clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

// Money parses a literal amount and panics on malformed input. Intended for
// fixtures and constants.
func Money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// MaxMoney is the largest amount a stored money column holds (NUMERIC(14, 2)).
var MaxMoney = decimal.RequireFromString("999999999999.99")

// ValidMoney reports whether d is a non-negative whole number of cents no
// larger than MaxMoney, so it is stored without rounding.
func ValidMoney(d decimal.Decimal) bool {
	return d.Sign() >= 0 && d.Equal(d.Round(2)) && d.LessThanOrEqual(MaxMoney)
}
