package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ActualKind selects one of the two actual-data collections.
type ActualKind string

const (
	ActualExpense ActualKind = "expense"
	ActualIncome  ActualKind = "income"
)

// ParseActualKind accepts "expense"/"expenses" and "income"/"incomes".
func ParseActualKind(s string) (ActualKind, error) {
	switch s {
	case "expense", "expenses":
		return ActualExpense, nil
	case "income", "incomes":
		return ActualIncome, nil
	}
	return "", fmt.Errorf("unknown actual kind %q", s)
}

// ActualEntry is a user-entered monthly figure keyed by (Month, Year).
type ActualEntry struct {
	Month  int // 0-11
	Year   int
	Amount decimal.Decimal
}

// Before orders entries chronologically.
func (e ActualEntry) Before(o ActualEntry) bool {
	if e.Year != o.Year {
		return e.Year < o.Year
	}
	return e.Month < o.Month
}
