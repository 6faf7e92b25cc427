// Package format renders numbers for the HTML pages.
package format

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Default is the locale pages render with.
var Default = language.AmericanEnglish

// Money formats an amount in cents in the locale's currency, e.g. "$1,234.50".
func Money(tag language.Tag, cents int64) string {
	p := message.NewPrinter(tag)
	unit, _ := currency.FromTag(tag)
	if unit == (currency.Unit{}) {
		unit = currency.USD
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + p.Sprint(currency.Symbol(unit)) + p.Sprintf("%.2f", float64(cents)/100)
}

// WholeMoney drops the cents, for goal and progress labels.
func WholeMoney(tag language.Tag, cents int64) string {
	p := message.NewPrinter(tag)
	unit, _ := currency.FromTag(tag)
	if unit == (currency.Unit{}) {
		unit = currency.USD
	}
	return p.Sprint(currency.Symbol(unit)) + p.Sprintf("%d", cents/100)
}

// Count formats an integer with the locale's grouping.
func Count(tag language.Tag, n int) string {
	return message.NewPrinter(tag).Sprintf("%d", n)
}

// Percent renders a 0..100 value with no decimals.
func Percent(tag language.Tag, pct float64) string {
	return message.NewPrinter(tag).Sprintf("%.0f%%", pct)
}
