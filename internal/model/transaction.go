package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one statement row after normalization.
type Transaction struct {
	TransactionDate time.Time
	ValueDate       time.Time
	Description     string
	Amount          decimal.Decimal // negative = expense, positive = income
	Balance         decimal.Decimal // running balance reported by the bank
}

// IsExpense reports whether the transaction debits the account.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// MonthlyAggregate summarises the transactions of one calendar month.
type MonthlyAggregate struct {
	Year             int
	Month            int // 0-11
	TotalExpenses    decimal.Decimal
	TotalIncomes     decimal.Decimal
	TransactionCount int
	EndBalance       decimal.Decimal
}

// Net returns expenses minus incomes for the month.
func (m MonthlyAggregate) Net() decimal.Decimal {
	return m.TotalExpenses.Sub(m.TotalIncomes)
}

// HistoricalTrends is derived wholesale from the ledger.
type HistoricalTrends struct {
	MonthlyData       []MonthlyAggregate
	AverageExpenses   decimal.Decimal
	AverageIncomes    decimal.Decimal
	ExpenseGrowthRate float64
	IncomeGrowthRate  float64
	Volatility        float64
}

// SeasonalFactor is a calendar month's average relative to the overall average.
type SeasonalFactor struct {
	ExpenseFactor float64
	IncomeFactor  float64
	SampleSize    int
}

// SeasonalPatterns is indexed by calendar month (0 = January).
type SeasonalPatterns [12]SeasonalFactor

// NeutralSeasonalPatterns returns factors of 1 with no samples.
func NeutralSeasonalPatterns() SeasonalPatterns {
	var p SeasonalPatterns
	for i := range p {
		p[i] = SeasonalFactor{ExpenseFactor: 1, IncomeFactor: 1}
	}
	return p
}
