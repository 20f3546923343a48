// Package format renders amounts the way Turkish real-estate reports print
// them: dot thousands separators, comma decimals and a trailing TL symbol.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency returns a Lira string with separators (e.g., "-1.234,56 TL").
func Currency(amount float64) string {
	return NumericCurrency(amount) + " TL"
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1.234,56").
func NumericCurrency(amount float64) string {
	formatted := formatPositive(math.Abs(amount), 2)
	if amount < 0 && formatted != "0,00" {
		return "-" + formatted
	}
	return formatted
}

// Percent returns a percentage with one decimal (e.g., "%16,5").
func Percent(value float64) string {
	formatted := formatPositive(math.Abs(value), 1)
	if value < 0 && formatted != "0,0" {
		return "-%" + formatted
	}
	return "%" + formatted
}

// Area returns a square-metre figure without decimals (e.g., "3.500 m²").
func Area(sqm float64) string {
	return formatPositive(math.Abs(sqm), 0) + " m²"
}

var printer = message.NewPrinter(language.Turkish)

func formatPositive(value float64, decimals int) string {
	return printer.Sprintf("%.*f", decimals, value)
}
