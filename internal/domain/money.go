package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var eurPrinter = message.NewPrinter(language.EuropeanPortuguese)

// FormatEUR renders an amount the way Portuguese statements do, e.g. "45,20 €".
func FormatEUR(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return eurPrinter.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2))) + " €"
}
