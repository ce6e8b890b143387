package analyzer

import (
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/cashflow/internal/ledger"
	"github.com/cleared-dev/cashflow/internal/model"
	"github.com/cleared-dev/cashflow/internal/snapshot"
	"github.com/cleared-dev/cashflow/internal/trends"
)

// Export captures the session as a snapshot state. The state shares no
// mutable data with the analyzer, so it can be encoded after later mutations.
func (a *Analyzer) Export() snapshot.State {
	st := snapshot.State{
		Balance:        a.balance,
		Transactions:   append([]model.Transaction(nil), a.transactions...),
		ActualExpenses: append([]model.ActualEntry(nil), a.book.Expenses...),
		ActualIncomes:  append([]model.ActualEntry(nil), a.book.Incomes...),
		Scenarios:      a.scenarios.Clone(),
		Active:         a.active,
		Timestamp:      a.opts.Now(),
		Version:        snapshot.Version,
	}
	if a.trends != nil {
		t := *a.trends
		t.MonthlyData = append([]model.MonthlyAggregate(nil), a.trends.MonthlyData...)
		st.Trends = &t
	}
	if a.seasonal != nil {
		p := *a.seasonal
		st.Seasonal = &p
	}
	return st
}

// Import replaces the session with st. It supersedes any statement load in
// flight. Snapshots without trends are re-analysed, and all scenarios are
// re-projected.
func (a *Analyzer) Import(st snapshot.State) {
	a.BeginLoad()

	a.transactions = st.Transactions
	ledger.SortByDate(a.transactions)
	a.balance = st.Balance
	a.book.Expenses = st.ActualExpenses
	a.book.Incomes = st.ActualIncomes
	a.book.Sort()
	a.trends = st.Trends
	a.seasonal = st.Seasonal
	a.warnings = LoadWarnings{}

	defaults := model.DefaultScenarios()
	for _, id := range model.AllScenarios {
		sc := st.Scenarios[id]
		if sc == nil {
			sc = defaults[id]
		}
		sc.ID = id
		a.scenarios[id] = sc
	}
	a.active = st.Active
	if !a.active.Valid() {
		a.active = model.ScenarioCurrent
	}

	reanalysed := false
	if a.HasData() && a.trends == nil {
		a.analyze()
		reanalysed = true
	} else if a.trends != nil && a.seasonal == nil {
		p := trends.Seasonal(a.trends)
		a.seasonal = &p
	}
	a.ProjectAll()

	a.log.WithFields(logrus.Fields{
		"transactions": len(a.transactions),
		"reanalysed":   reanalysed,
		"version":      st.Version,
	}).Info("snapshot imported")
}
