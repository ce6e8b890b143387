package analyzer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashflow/internal/actuals"
	"github.com/cleared-dev/cashflow/internal/ledger"
	"github.com/cleared-dev/cashflow/internal/model"
)

// DataSource reports whether actual figures override the statement.
func (a *Analyzer) DataSource() DataSource {
	switch {
	case !a.HasData():
		return SourceNone
	case a.book.HasExpenses():
		return SourceActual
	default:
		return SourceStatement
	}
}

// CurrentBalance is the actual balance when a statement is loaded and actual
// expenses exist, else the statement balance. Without a statement there is
// nothing to subtract expenses from, so it is zero.
func (a *Analyzer) CurrentBalance() decimal.Decimal {
	if !a.HasData() {
		return decimal.Zero
	}
	if bal, ok := a.book.ActualBalance(a.balance); ok {
		return bal
	}
	return a.balance
}

// MonthlyExpenses is the mean actual expense when recorded, else the
// statement-derived monthly average.
func (a *Analyzer) MonthlyExpenses() decimal.Decimal {
	if m, ok := a.book.MonthlyExpenses(); ok {
		return m
	}
	return ledger.MonthlyExpenses(a.transactions)
}

// MonthlyIncome is the mean actual income, else the historical average
// income, else zero.
func (a *Analyzer) MonthlyIncome() decimal.Decimal {
	if len(a.book.Incomes) > 0 {
		return a.book.MonthlyIncome()
	}
	if a.trends != nil {
		return a.trends.AverageIncomes
	}
	return decimal.Zero
}

// NetMonthly is monthly income minus monthly expenses.
func (a *Analyzer) NetMonthly() decimal.Decimal {
	return a.MonthlyIncome().Sub(a.MonthlyExpenses())
}

// Summary is a read-only view of the headline figures.
type Summary struct {
	HasData          bool
	Source           DataSource
	Balance          decimal.Decimal
	StatementBalance decimal.Decimal
	MonthlyExpenses  decimal.Decimal
	MonthlyIncome    decimal.Decimal
	NetMonthly       decimal.Decimal
	IncomeThisYear   decimal.Decimal
	Transactions     int
	LastDate         time.Time
	ActiveScenario   model.ScenarioID
	MonthsUntilBroke int
	ActualMonthsLeft float64
	HasActualMonths  bool
	Completeness     actuals.Completeness
	Warnings         LoadWarnings
}

// Summary collects the headline figures for presentation.
func (a *Analyzer) Summary() Summary {
	s := Summary{
		HasData:          a.HasData(),
		Source:           a.DataSource(),
		Balance:          a.CurrentBalance(),
		StatementBalance: a.balance,
		MonthlyExpenses:  a.MonthlyExpenses(),
		MonthlyIncome:    a.MonthlyIncome(),
		IncomeThisYear:   a.book.IncomeForYear(a.opts.Now().Year()),
		Transactions:     len(a.transactions),
		ActiveScenario:   a.active,
		MonthsUntilBroke: a.MonthsUntilBroke(a.active),
		Completeness:     a.book.Completeness(),
		Warnings:         a.warnings,
	}
	s.NetMonthly = s.MonthlyIncome.Sub(s.MonthlyExpenses)
	s.LastDate, _ = a.LastDate()
	if s.HasData {
		s.ActualMonthsLeft, s.HasActualMonths = a.book.MonthsUntilBroke(a.balance)
	}
	return s
}

// MissingRecentMonths lists which of the last n months lack actual data.
func (a *Analyzer) MissingRecentMonths(n int) []actuals.MonthStatus {
	return a.book.MissingRecentMonths(a.opts.Now(), n)
}
