// Package analyzer owns one analysis session: the ledger, actual figures,
// trends and the four scenarios. Every mutation re-projects all scenarios
// before returning. An Analyzer is not safe for concurrent use.
package analyzer

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/cashflow/internal/actuals"
	"github.com/cleared-dev/cashflow/internal/model"
	"github.com/cleared-dev/cashflow/internal/projection"
)

// Options configures an Analyzer.
type Options struct {
	MonthsAhead    int
	NormalizeYears bool
	Now            func() time.Time
	Logger         logrus.FieldLogger
}

// LoadWarnings counts the non-fatal problems of the last committed load.
type LoadWarnings struct {
	DroppedRows   int
	DateFallbacks int
	YearsShifted  int
}

// DataSource tells where balance and expense figures come from.
type DataSource string

const (
	SourceNone      DataSource = "none"
	SourceStatement DataSource = "statement"
	SourceActual    DataSource = "actual"
)

// Analyzer is the session state owner.
type Analyzer struct {
	opts Options
	log  logrus.FieldLogger

	transactions []model.Transaction
	balance      decimal.Decimal
	book         actuals.Book
	trends       *model.HistoricalTrends
	seasonal     *model.SeasonalPatterns
	scenarios    model.ScenarioSet
	active       model.ScenarioID
	baseline     []model.ProjectionPoint
	skipped      [len(model.AllScenarios)][]projection.Skip

	latest   Token
	warnings LoadWarnings
}

// New returns an empty analyzer with default scenarios.
func New(opts Options) *Analyzer {
	if opts.MonthsAhead <= 0 {
		opts.MonthsAhead = projection.DefaultMonthsAhead
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Analyzer{
		opts:      opts,
		log:       log,
		balance:   decimal.Zero,
		scenarios: model.DefaultScenarios(),
		active:    model.ScenarioCurrent,
	}
}

// MonthsAhead is the projection horizon.
func (a *Analyzer) MonthsAhead() int { return a.opts.MonthsAhead }

// Clear drops all data. Scenarios keep their identity, name and color but
// lose incomes, projections and burn rate adjustments.
func (a *Analyzer) Clear() {
	a.transactions = nil
	a.balance = decimal.Zero
	a.book.Clear()
	a.trends = nil
	a.seasonal = nil
	a.baseline = nil
	for _, sc := range a.scenarios {
		sc.Reset()
	}
	a.skipped = [len(model.AllScenarios)][]projection.Skip{}
	a.active = model.ScenarioCurrent
	a.warnings = LoadWarnings{}
	a.log.Info("session data cleared")
}

// HasData reports whether a ledger is loaded.
func (a *Analyzer) HasData() bool {
	return len(a.transactions) > 0
}

// Transactions returns the ledger, sorted by transaction date.
func (a *Analyzer) Transactions() []model.Transaction {
	return a.transactions
}

// StatementBalance is the canonical balance of the loaded statement.
func (a *Analyzer) StatementBalance() decimal.Decimal {
	return a.balance
}

// LastDate is the date of the newest ledger transaction.
func (a *Analyzer) LastDate() (time.Time, bool) {
	if len(a.transactions) == 0 {
		return time.Time{}, false
	}
	d := a.transactions[len(a.transactions)-1].TransactionDate
	return d, !d.IsZero()
}

// Actuals exposes the actual-data book for reading.
func (a *Analyzer) Actuals() *actuals.Book {
	return &a.book
}

// LastLoadWarnings reports the warnings of the last committed load.
func (a *Analyzer) LastLoadWarnings() LoadWarnings {
	return a.warnings
}

// Trends returns the historical trends, nil without data.
func (a *Analyzer) Trends() *model.HistoricalTrends {
	return a.trends
}

// Seasonal returns the seasonal factors, nil without data.
func (a *Analyzer) Seasonal() *model.SeasonalPatterns {
	return a.seasonal
}

// Scenario returns the scenario for id, nil when id is unknown.
func (a *Analyzer) Scenario(id model.ScenarioID) *model.Scenario {
	return a.scenarios.Get(id)
}

// Scenarios returns all four scenarios in display order.
func (a *Analyzer) Scenarios() []*model.Scenario {
	out := make([]*model.Scenario, 0, len(a.scenarios))
	for _, id := range model.AllScenarios {
		out = append(out, a.scenarios[id])
	}
	return out
}

// ActiveScenario returns the id of the scenario being edited.
func (a *Analyzer) ActiveScenario() model.ScenarioID {
	return a.active
}

// Baseline is the reference trajectory: statement-implied burn, no incomes.
func (a *Analyzer) Baseline() []model.ProjectionPoint {
	return a.baseline
}

// SkippedIncomes lists incomes the last projection of id could not place.
func (a *Analyzer) SkippedIncomes(id model.ScenarioID) []projection.Skip {
	if !id.Valid() {
		return nil
	}
	return a.skipped[id]
}
