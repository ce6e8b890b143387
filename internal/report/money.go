package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money formats decimal amounts in a fixed currency.
type Money struct {
	cur *money.Currency
}

// NewMoney returns a formatter for an ISO 4217 code, falling back to EUR for
// unknown codes.
func NewMoney(code string) Money {
	cur := money.GetCurrency(code)
	if cur == nil {
		cur = money.GetCurrency(money.EUR)
	}
	return Money{cur: cur}
}

// Format renders amount with the currency symbol and thousands separators.
func (m Money) Format(amount decimal.Decimal) string {
	minor := amount.Shift(int32(m.cur.Fraction)).Round(0)
	return m.cur.Formatter().Format(minor.IntPart())
}

// Code is the ISO code in use.
func (m Money) Code() string {
	return m.cur.Code
}
