package utils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.BritishEnglish)

// FormatPrice renders an amount with its currency symbol, e.g. "£ 12.50".
// Unknown currency codes fall back to "12.50 XYZ".
func FormatPrice(amount decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return amount.StringFixed(2) + " " + code
	}
	return pricePrinter.Sprint(currency.Symbol(unit.Amount(amount.InexactFloat64())))
}
