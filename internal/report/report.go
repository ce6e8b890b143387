package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashflow/internal/activity"
	"github.com/cleared-dev/cashflow/internal/actuals"
	"github.com/cleared-dev/cashflow/internal/analyzer"
	"github.com/cleared-dev/cashflow/internal/model"
	"github.com/cleared-dev/cashflow/internal/period"
	"github.com/cleared-dev/cashflow/internal/projection"
	"github.com/cleared-dev/cashflow/internal/snapshot"
	"github.com/cleared-dev/cashflow/internal/trends"
)

// Printer writes reports to w using one currency.
type Printer struct {
	w     io.Writer
	money Money
}

// New returns a Printer for the given currency code.
func New(w io.Writer, currency string) *Printer {
	return &Printer{w: w, money: NewMoney(currency)}
}

func (p *Printer) title(s string) {
	fmt.Fprintln(p.w, TitleStyle.Render(s))
}

func (p *Printer) signed(d decimal.Decimal) string {
	s := p.money.Format(d)
	if d.IsNegative() {
		return BadStyle.Render(s)
	}
	return s
}

// MonthLabel renders a 0-based month and year as "Jan 2025".
func MonthLabel(month, year int) string {
	return fmt.Sprintf("%s %d", period.MonthName(month), year)
}

// Summary prints the headline figures.
func (p *Printer) Summary(s analyzer.Summary) {
	p.title("Cash flow summary")
	if !s.HasData {
		fmt.Fprintln(p.w, SubtleStyle.Render("No data loaded. Import a statement or add actual figures."))
		return
	}

	g := newGrid()
	g.add("Source", string(s.Source))
	g.add("Current balance", p.signed(s.Balance))
	if s.Source == analyzer.SourceActual {
		g.add("Statement balance", p.signed(s.StatementBalance))
	}
	g.add("Monthly expenses", p.money.Format(s.MonthlyExpenses))
	g.add("Monthly income", p.money.Format(s.MonthlyIncome))
	g.add("Net monthly", p.signed(s.NetMonthly))
	g.add("Income this year", p.money.Format(s.IncomeThisYear))
	if s.Transactions > 0 {
		g.add("Transactions", fmt.Sprintf("%d (last %s)", s.Transactions, s.LastDate.Format("2006-01-02")))
	}
	g.add(fmt.Sprintf("Runway (%s)", s.ActiveScenario), runway(s.MonthsUntilBroke))
	if s.HasActualMonths {
		g.add("Runway (actuals)", fmt.Sprintf("%.1f months", s.ActualMonthsLeft))
	}
	p.flush(g)

	p.completeness(s.Completeness)
	p.warnings(s.Warnings)
}

func runway(months int) string {
	switch {
	case months < 0:
		return BadStyle.Render("already negative")
	case months == 1:
		return WarnStyle.Render("1 month")
	case months < 6:
		return WarnStyle.Render(fmt.Sprintf("%d months", months))
	default:
		return GoodStyle.Render(fmt.Sprintf("%d months", months))
	}
}

func (p *Printer) completeness(c actuals.Completeness) {
	style := GoodStyle
	if !c.Sufficient() {
		style = WarnStyle
	}
	fmt.Fprintf(p.w, "\nActual data: %d/%d expense months, %d/%d income months\n",
		c.ExpenseMonths, actuals.SufficientMonths, c.IncomeMonths, actuals.SufficientMonths)
	fmt.Fprintln(p.w, style.Render(c.Recommendation()))
}

func (p *Printer) warnings(w analyzer.LoadWarnings) {
	if w.DroppedRows > 0 {
		fmt.Fprintln(p.w, WarnStyle.Render(fmt.Sprintf("%d statement rows were skipped", w.DroppedRows)))
	}
	if w.DateFallbacks > 0 {
		fmt.Fprintln(p.w, WarnStyle.Render(fmt.Sprintf("%d rows had unreadable dates and were dated today", w.DateFallbacks)))
	}
	if w.YearsShifted > 0 {
		fmt.Fprintln(p.w, SubtleStyle.Render(fmt.Sprintf("dates shifted back %d years", w.YearsShifted)))
	}
}

// Trends prints monthly aggregates, growth rates and seasonal factors.
func (p *Printer) Trends(t *model.HistoricalTrends, seasonal *model.SeasonalPatterns) {
	p.title("Historical trends")
	if t == nil {
		fmt.Fprintln(p.w, SubtleStyle.Render("No statement loaded."))
		return
	}

	g := newGrid("Month", "Expenses", "Income", "Txns", "End balance")
	for _, m := range t.MonthlyData {
		g.add(MonthLabel(m.Month, m.Year), p.money.Format(m.TotalExpenses), p.money.Format(m.TotalIncomes),
			fmt.Sprint(m.TransactionCount), p.signed(m.EndBalance))
	}
	p.flush(g)

	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "Average expenses: %s  %s\n", p.money.Format(t.AverageExpenses), rate(t.ExpenseGrowthRate, true))
	fmt.Fprintf(p.w, "Average income:   %s  %s\n", p.money.Format(t.AverageIncomes), rate(t.IncomeGrowthRate, false))
	fmt.Fprintf(p.w, "Volatility:       %s\n", p.money.Format(decimal.NewFromFloat(t.Volatility)))

	if seasonal == nil {
		return
	}
	fmt.Fprintln(p.w)
	g = newGrid("Month", "Expense factor", "Income factor", "Samples")
	for i, f := range seasonal {
		if f.SampleSize == 0 {
			continue
		}
		g.add(period.MonthName(i), fmt.Sprintf("%.2f", f.ExpenseFactor), fmt.Sprintf("%.2f", f.IncomeFactor), fmt.Sprint(f.SampleSize))
	}
	p.flush(g)
}

func rate(r float64, expense bool) string {
	d := trends.Classify(r)
	s := fmt.Sprintf("%s (%s)", trends.FormatRate(r), d)
	switch {
	case d == trends.Stable:
		return SubtleStyle.Render(s)
	case trends.Favourable(d, expense):
		return GoodStyle.Render(s)
	default:
		return BadStyle.Render(s)
	}
}

// Projection prints a scenario's monthly forecast and any skipped incomes.
func (p *Printer) Projection(sc *model.Scenario, skipped []projection.Skip) {
	p.title("Projection: " + scenarioStyle(sc.Color).Render(sc.Name))
	if len(sc.Data) == 0 {
		fmt.Fprintln(p.w, SubtleStyle.Render("No projection available."))
		return
	}
	if !sc.BurnRateFactor.Equal(decimal.NewFromInt(1)) {
		fmt.Fprintf(p.w, "Burn rate: %s%%\n", sc.BurnRateFactor.Shift(2).StringFixed(0))
	}

	g := newGrid("#", "Month", "Expenses", "Income", "Balance", "Confidence")
	for i, pt := range sc.Data {
		income := ""
		if pt.Income.IsPositive() {
			income = GoodStyle.Render("+" + p.money.Format(pt.Income))
		}
		g.add(fmt.Sprint(i), pt.Date.Format("Jan 2006"), p.money.Format(pt.Expenses), income,
			p.signed(pt.Balance), fmt.Sprintf("%.0f%%", projection.Confidence(i)*100))
	}
	p.flush(g)

	fmt.Fprintf(p.w, "\nRunway: %s\n", runway(projection.MonthsUntilBroke(sc.Data)))
	for _, s := range skipped {
		fmt.Fprintln(p.w, WarnStyle.Render("skipped income "+s.Describe()))
	}
}

// Scenarios prints one line per scenario with its runway and end balance.
// ActualTrajectory prints the balance path implied by recorded expenses
// since the statement's last transaction. Nothing is printed without one.
func (p *Printer) ActualTrajectory(points []model.ProjectionPoint) {
	if len(points) < 2 {
		return
	}
	p.title("Actual data")
	g := newGrid("Month", "Expenses", "Balance")
	for _, pt := range points {
		expenses := ""
		if pt.Expenses.IsPositive() {
			expenses = p.money.Format(pt.Expenses)
		}
		g.add(pt.Date.Format("Jan 2006"), expenses, p.signed(pt.Balance))
	}
	p.flush(g)
}

func (p *Printer) Scenarios(list []*model.Scenario, active model.ScenarioID) {
	p.title("Scenarios")
	g := newGrid()
	for _, sc := range list {
		marker := " "
		if sc.ID == active {
			marker = "*"
		}
		end := "-"
		if n := len(sc.Data); n > 0 {
			end = p.signed(sc.Data[n-1].Balance)
		}
		g.add(marker+" "+sc.ID.String(), scenarioStyle(sc.Color).Render(sc.Name),
			fmt.Sprintf("%d incomes", len(sc.Incomes)),
			"burn "+sc.BurnRateFactor.Shift(2).StringFixed(0)+"%",
			"end "+end, "runway "+runway(projection.MonthsUntilBroke(sc.Data)))
	}
	p.flush(g)
}

// Incomes lists a scenario's one-time incomes with their indexes.
func (p *Printer) Incomes(sc *model.Scenario) {
	if len(sc.Incomes) == 0 {
		fmt.Fprintln(p.w, SubtleStyle.Render("No incomes for "+sc.Name+"."))
		return
	}
	g := newGrid()
	for i, inc := range sc.Incomes {
		g.add(fmt.Sprint(i), inc.Date.Format("2006-01-02"), p.money.Format(inc.Amount))
	}
	p.flush(g)
}

// Actuals lists recorded actual figures side by side per month.
func (p *Printer) Actuals(book *actuals.Book) {
	p.title("Actual data")
	if len(book.Expenses) == 0 && len(book.Incomes) == 0 {
		fmt.Fprintln(p.w, SubtleStyle.Render("No actual data recorded."))
		return
	}

	type row struct{ expense, income string }
	var order []model.ActualEntry
	rows := map[[2]int]*row{}
	add := func(e model.ActualEntry) *row {
		k := [2]int{e.Year, e.Month}
		if r, ok := rows[k]; ok {
			return r
		}
		r := &row{expense: "-", income: "-"}
		rows[k] = r
		order = append(order, e)
		return r
	}
	for _, e := range book.Expenses {
		add(e).expense = p.money.Format(e.Amount)
	}
	for _, e := range book.Incomes {
		add(e).income = p.money.Format(e.Amount)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	g := newGrid("Month", "Expenses", "Income")
	for _, e := range order {
		r := rows[[2]int{e.Year, e.Month}]
		g.add(MonthLabel(e.Month, e.Year), r.expense, r.income)
	}
	p.flush(g)
}

// Missing prints the recent months still lacking actual figures.
func (p *Printer) Missing(months []actuals.MonthStatus) {
	if len(months) == 0 {
		fmt.Fprintln(p.w, GoodStyle.Render("All recent months have actual data."))
		return
	}
	fmt.Fprintln(p.w, WarnStyle.Render("Months missing actual data:"))
	for _, m := range months {
		var missing []string
		if !m.HasExpense {
			missing = append(missing, "expense")
		}
		if !m.HasIncome {
			missing = append(missing, "income")
		}
		fmt.Fprintf(p.w, "  %s: %s\n", MonthLabel(m.Month, m.Year), strings.Join(missing, ", "))
	}
}

// Activity prints activity log entries, oldest first.
func (p *Printer) Activity(entries []activity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, SubtleStyle.Render("No activity recorded."))
		return
	}
	p.title("Activity")
	g := newGrid()
	for _, e := range entries {
		scenario := e.Scenario
		if scenario == "" {
			scenario = "-"
		}
		g.add(e.Timestamp.UTC().Format("2006-01-02 15:04"), e.Source, e.Action, scenario, e.Details)
	}
	p.flush(g)
}

// Archive lists archived snapshots in the order given.
func (p *Printer) Archive(records []snapshot.Record) {
	if len(records) == 0 {
		fmt.Fprintln(p.w, "No archived snapshots.")
		return
	}
	g := newGrid()
	for _, r := range records {
		g.add(r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Label, fmt.Sprintf("%d bytes", r.Size))
	}
	p.flush(g)
}
