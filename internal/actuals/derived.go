package actuals

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashflow/internal/model"
)

// SufficientMonths is the number of recorded months considered enough for a
// reliable actual-data projection.
const SufficientMonths = 3

// midMonthDay is the day used when an actual entry needs a calendar date.
const midMonthDay = 15

// ActualBalance is the last statement balance minus all actual expenses.
// ok is false when no actual expenses are recorded.
func (b *Book) ActualBalance(lastBalance decimal.Decimal) (decimal.Decimal, bool) {
	if !b.HasExpenses() {
		return decimal.Zero, false
	}
	return lastBalance.Sub(sum(b.Expenses)), true
}

// MonthlyExpenses is the mean recorded actual expense.
func (b *Book) MonthlyExpenses() (decimal.Decimal, bool) {
	if !b.HasExpenses() {
		return decimal.Zero, false
	}
	return sum(b.Expenses).Div(decimal.NewFromInt(int64(len(b.Expenses)))), true
}

// MonthsUntilBroke divides the actual balance by the actual monthly expense.
// ok is false when either is unavailable or monthly expenses are not positive.
func (b *Book) MonthsUntilBroke(lastBalance decimal.Decimal) (float64, bool) {
	bal, ok := b.ActualBalance(lastBalance)
	if !ok {
		return 0, false
	}
	monthly, ok := b.MonthlyExpenses()
	if !ok || !monthly.IsPositive() {
		return 0, false
	}
	return bal.Div(monthly).InexactFloat64(), true
}

// MonthlyIncome is the mean recorded actual income, zero when none.
func (b *Book) MonthlyIncome() decimal.Decimal {
	if len(b.Incomes) == 0 {
		return decimal.Zero
	}
	return sum(b.Incomes).Div(decimal.NewFromInt(int64(len(b.Incomes))))
}

// IncomeForYear sums recorded incomes in a calendar year.
func (b *Book) IncomeForYear(year int) decimal.Decimal {
	total := decimal.Zero
	for _, e := range b.Incomes {
		if e.Year == year {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// MonthStatus reports which kinds are recorded for a month.
type MonthStatus struct {
	Year       int
	Month      int // 0-11
	HasExpense bool
	HasIncome  bool
}

// MissingRecentMonths checks the n calendar months before now and returns
// those lacking an expense or an income entry, most recent first.
func (b *Book) MissingRecentMonths(now time.Time, n int) []MonthStatus {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	var out []MonthStatus
	for i := 1; i <= n; i++ {
		d := first.AddDate(0, -i, 0)
		st := MonthStatus{Year: d.Year(), Month: int(d.Month()) - 1}
		st.HasExpense = b.Has(model.ActualExpense, st.Month, st.Year)
		st.HasIncome = b.Has(model.ActualIncome, st.Month, st.Year)
		if !st.HasExpense || !st.HasIncome {
			out = append(out, st)
		}
	}
	return out
}

// Completeness summarises how much actual data has been recorded.
type Completeness struct {
	ExpenseMonths int
	IncomeMonths  int
}

// Completeness counts recorded months per kind.
func (b *Book) Completeness() Completeness {
	return Completeness{ExpenseMonths: len(b.Expenses), IncomeMonths: len(b.Incomes)}
}

// Ratio is the share of SufficientMonths reached for a count, capped at 1.
func Ratio(months int) float64 {
	r := float64(months) / SufficientMonths
	if r > 1 {
		return 1
	}
	return r
}

// Sufficient reports whether both kinds reach SufficientMonths.
func (c Completeness) Sufficient() bool {
	return c.ExpenseMonths >= SufficientMonths && c.IncomeMonths >= SufficientMonths
}

// Recommendation is a one-line hint on what to record next.
func (c Completeness) Recommendation() string {
	switch {
	case c.ExpenseMonths == 0 && c.IncomeMonths == 0:
		return "Start by adding actual expense and income data for more accurate projections."
	case !c.Sufficient():
		return "Add more months of data (aim for 3+ months) to improve projection accuracy."
	default:
		return "You have sufficient data for accurate projections."
	}
}

// EntryDate places an actual entry on the middle of its month.
func EntryDate(e model.ActualEntry) time.Time {
	return time.Date(e.Year, time.Month(e.Month+1), midMonthDay, 0, 0, 0, 0, time.UTC)
}

// ProjectActuals builds a running-balance trajectory from start, subtracting
// each actual expense dated on or after anchor. Returns nil when none qualify.
func (b *Book) ProjectActuals(anchor time.Time, start decimal.Decimal) []model.ProjectionPoint {
	var relevant []model.ActualEntry
	for _, e := range b.Expenses {
		if !EntryDate(e).Before(anchor) {
			relevant = append(relevant, e)
		}
	}
	if len(relevant) == 0 {
		return nil
	}
	sortEntries(relevant)

	points := make([]model.ProjectionPoint, 0, len(relevant)+1)
	points = append(points, model.ProjectionPoint{Date: anchor, Balance: start, Expenses: decimal.Zero, Income: decimal.Zero})
	running := start
	for _, e := range relevant {
		running = running.Sub(e.Amount)
		points = append(points, model.ProjectionPoint{
			Date:     EntryDate(e),
			Balance:  running,
			Expenses: e.Amount,
			Income:   decimal.Zero,
		})
	}
	return points
}
