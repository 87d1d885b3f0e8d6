// Package money formats euro amounts for customer facing text.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders decimal amounts in a fixed locale and currency.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter builds a formatter for tag; the symbol comes from unit.
func NewFormatter(tag language.Tag, unit currency.Unit) *Formatter {
	p := message.NewPrinter(tag)
	return &Formatter{
		printer: p,
		symbol:  p.Sprint(currency.Symbol(unit)),
	}
}

// Default formats euros the way the shop displays prices (Greek locale).
func Default() *Formatter {
	return NewFormatter(language.Greek, currency.EUR)
}

// Format renders amount with two decimals followed by the currency symbol.
func (f *Formatter) Format(amount decimal.Decimal) string {
	value := amount.Round(2).InexactFloat64()
	return f.printer.Sprintf("%v %s", number.Decimal(value, number.Scale(2)), f.symbol)
}

// Format renders amount with the default formatter.
func Format(amount decimal.Decimal) string {
	return Default().Format(amount)
}
