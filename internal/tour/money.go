package tour

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatPrice renders amount in unit using the number conventions of tag.
func FormatPrice(tag language.Tag, unit currency.Unit, amount float64) string {
	p := message.NewPrinter(tag)
	return p.Sprintf("%v", currency.Symbol(unit.Amount(amount)))
}
