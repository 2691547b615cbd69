// Package core provides money parsing and handling utilities.
//
// Amounts are kept as decimals end to end; float64 only appears at the
// presentation boundary.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a signed decimal string. Both dot (12.34) and comma
// (12,34) separators are accepted.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("-50")    -> -50
//	ParseAmount("12,5")   -> 12.5
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// RoundCents rounds half away from zero to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatAmount renders d with exactly two fraction digits, as stored.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ToFloat rounds to cents and converts for JSON output.
func ToFloat(d decimal.Decimal) float64 {
	return RoundCents(d).InexactFloat64()
}
