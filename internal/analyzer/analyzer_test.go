package analyzer

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/importer"
	"github.com/cleared-dev/cashflow/internal/model"
	"github.com/cleared-dev/cashflow/internal/snapshot"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func fixedNow() time.Time { return time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC) }

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return New(Options{MonthsAhead: 6, Now: fixedNow, Logger: logger})
}

func loadTestdata(t *testing.T, a *Analyzer) {
	t.Helper()
	f, err := os.Open("../../testdata/statement.csv")
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, a.LoadStatement(context.Background(), f, importer.NewSemicolonParser()))
}

func TestNew_Defaults(t *testing.T) {
	a := New(Options{})
	assert.Equal(t, 24, a.MonthsAhead())
	assert.False(t, a.HasData())
	assert.Equal(t, SourceNone, a.DataSource())
	assert.Equal(t, model.ScenarioCurrent, a.ActiveScenario())
	assert.Len(t, a.Scenarios(), 4)
	assert.Nil(t, a.Baseline())
}

func TestLoadStatement(t *testing.T) {
	a := newTestAnalyzer(t)
	loadTestdata(t, a)

	assert.True(t, a.HasData())
	assert.Len(t, a.Transactions(), 6)
	assert.True(t, a.CurrentBalance().Equal(decimal.RequireFromString("2844.5")))
	assert.Equal(t, SourceStatement, a.DataSource())
	require.NotNil(t, a.Trends())
	require.NotNil(t, a.Seasonal())
	assert.Len(t, a.Trends().MonthlyData, 3)

	// expenses 150.5+800+120+60+25 = 1155.5 over Jan..Mar (2 months)
	assert.True(t, a.MonthlyExpenses().Equal(decimal.RequireFromString("577.75")), a.MonthlyExpenses().String())

	require.Len(t, a.Baseline(), 7)
	for _, sc := range a.Scenarios() {
		require.Len(t, sc.Data, 7, sc.Name)
	}
	last, ok := a.LastDate()
	require.True(t, ok)
	assert.True(t, a.Baseline()[0].Date.Equal(last))
}

func TestLoadStatement_FailureKeepsState(t *testing.T) {
	a := newTestAnalyzer(t)
	loadTestdata(t, a)

	err := a.LoadStatement(context.Background(), strings.NewReader("a;b\n1;2\n"), importer.NewSemicolonParser())
	assert.ErrorIs(t, err, common.ErrMissingColumns)
	assert.Len(t, a.Transactions(), 6)

	var ue *common.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "the statement needs date, amount and balance columns", ue.UserMessage)

	err = a.LoadStatement(context.Background(), strings.NewReader(""), importer.NewSemicolonParser())
	assert.ErrorIs(t, err, common.ErrNoData)
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "the statement has no usable transactions", ue.UserMessage)
	assert.Len(t, a.Transactions(), 6)
}

func TestLoadStatement_Canceled(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.LoadStatement(ctx, strings.NewReader("Date;Description;Amount;Balance\n01/01/2025;x;-1;1\n"), importer.NewSemicolonParser())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, a.HasData())
}

func TestCommitLoad_StaleTokenRejected(t *testing.T) {
	a := newTestAnalyzer(t)
	parser := importer.NewSemicolonParser()

	older := a.BeginLoad()
	newer := a.BeginLoad()

	lOld, err := a.ParseStatement(strings.NewReader("Date;Description;Amount;Balance\n01/01/2025;old;-1,00;100,00\n"), parser)
	require.NoError(t, err)
	lNew, err := a.ParseStatement(strings.NewReader("Date;Description;Amount;Balance\n02/02/2025;new;-2,00;200,00\n"), parser)
	require.NoError(t, err)

	require.NoError(t, a.CommitLoad(newer, lNew))
	err = a.CommitLoad(older, lOld)
	assert.ErrorIs(t, err, common.ErrStaleLoad)
	assert.Equal(t, "new", a.Transactions()[0].Description)
}

func TestLoad_DateFallbackWarning(t *testing.T) {
	logger, hook := test.NewNullLogger()
	a := New(Options{MonthsAhead: 3, Now: fixedNow, Logger: logger})
	csv := "Date;Description;Amount;Balance\n01/01/2025;ok;-1,00;10,00\nsoon;odd;-1,00;9,00\n;skip;-1,00;8,00\n"
	require.NoError(t, a.LoadStatement(context.Background(), strings.NewReader(csv), importer.NewSemicolonParser()))

	w := a.LastLoadWarnings()
	assert.Equal(t, 1, w.DateFallbacks)
	assert.Equal(t, 1, w.DroppedRows)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["date_fallbacks"] == 1 {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestActualsWithoutStatement(t *testing.T) {
	a := newTestAnalyzer(t)
	_, err := a.UpsertActual(model.ActualExpense, 1, 2025, d(300))
	require.NoError(t, err)

	assert.Equal(t, SourceNone, a.DataSource())
	assert.True(t, a.CurrentBalance().IsZero())
	s := a.Summary()
	assert.False(t, s.HasActualMonths)
	assert.True(t, s.Balance.IsZero())
	assert.Nil(t, a.ActualTrajectory())

	loadTestdata(t, a)
	assert.Equal(t, SourceActual, a.DataSource())
	assert.True(t, a.CurrentBalance().Equal(decimal.RequireFromString("2544.5")))
}

func TestActualDataOverridesStatement(t *testing.T) {
	a := newTestAnalyzer(t)
	loadTestdata(t, a)

	_, err := a.UpsertActual(model.ActualExpense, 2, 2025, d(1000))
	require.NoError(t, err)
	_, err = a.UpsertActual(model.ActualExpense, 3, 2025, d(500))
	require.NoError(t, err)

	assert.Equal(t, SourceActual, a.DataSource())
	assert.True(t, a.CurrentBalance().Equal(decimal.RequireFromString("1344.5")))
	assert.True(t, a.MonthlyExpenses().Equal(d(750)))

	base := a.Baseline()
	assert.True(t, base[0].Balance.Equal(decimal.RequireFromString("1344.5")))
	assert.True(t, base[1].Balance.Equal(decimal.RequireFromString("594.5")))
	assert.Equal(t, 1, a.MonthsUntilBroke(model.ScenarioCurrent))

	traj := a.ActualTrajectory()
	require.Len(t, traj, 3)
	assert.True(t, traj[2].Balance.Equal(decimal.RequireFromString("1344.5")))

	require.NoError(t, a.RemoveActual(model.ActualExpense, 2, 2025))
	require.NoError(t, a.RemoveActual(model.ActualExpense, 3, 2025))
	assert.Equal(t, SourceStatement, a.DataSource())
	assert.ErrorIs(t, a.RemoveActual(model.ActualExpense, 3, 2025), common.ErrNotFound)
}

func TestMonthlyIncome_Precedence(t *testing.T) {
	a := newTestAnalyzer(t)
	assert.True(t, a.MonthlyIncome().IsZero())

	loadTestdata(t, a)
	// one income of 2500 across three buckets
	assert.True(t, a.MonthlyIncome().Round(2).Equal(decimal.RequireFromString("833.33")))

	_, err := a.UpsertActual(model.ActualIncome, 1, 2025, d(1200))
	require.NoError(t, err)
	assert.True(t, a.MonthlyIncome().Equal(d(1200)))
	assert.True(t, a.NetMonthly().Equal(d(1200).Sub(a.MonthlyExpenses())))
}

func TestScenarioIncomesAndBurnRate(t *testing.T) {
	a := newTestAnalyzer(t)
	loadTestdata(t, a)

	require.NoError(t, a.AddIncome(model.Scenario1, time.Date(2025, 5, 10, 23, 30, 0, 0, time.UTC), d(1000)))
	require.NoError(t, a.AddIncome(model.Scenario1, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), d(200)))

	sc := a.Scenario(model.Scenario1)
	require.Len(t, sc.Incomes, 2)
	assert.Equal(t, 4, int(sc.Incomes[0].Date.Month()))
	assert.Equal(t, 12, sc.Incomes[1].Date.Hour())

	base := a.Baseline()
	assert.True(t, sc.Data[1].Balance.Equal(base[1].Balance.Add(d(200))))
	assert.True(t, sc.Data[2].Balance.Equal(base[2].Balance.Add(d(1200))))
	assert.True(t, sc.Data[6].Balance.Equal(base[6].Balance.Add(d(1200))))
	assert.True(t, a.Scenario(model.Scenario2).Data[2].Balance.Equal(base[2].Balance))

	require.NoError(t, a.RemoveIncome(model.Scenario1, 0))
	assert.True(t, a.Scenario(model.Scenario1).Data[1].Balance.Equal(base[1].Balance))
	assert.ErrorIs(t, a.RemoveIncome(model.Scenario1, 5), common.ErrNotFound)

	require.NoError(t, a.ClearIncomes(model.Scenario1))
	assert.Empty(t, a.Scenario(model.Scenario1).Incomes)

	require.NoError(t, a.SetBurnRate(model.Scenario3, decimal.Zero))
	for _, p := range a.Scenario(model.Scenario3).Data {
		assert.True(t, p.Balance.Equal(a.CurrentBalance()))
	}
	assert.Equal(t, 6, a.MonthsUntilBroke(model.Scenario3))

	// the baseline ignores the current scenario's burn rate
	require.NoError(t, a.SetBurnRate(model.ScenarioCurrent, d(2)))
	assert.True(t, a.Baseline()[1].Balance.Equal(base[1].Balance))
	assert.False(t, a.Scenario(model.ScenarioCurrent).Data[1].Balance.Equal(base[1].Balance))
}

func TestScenarioIncome_AfterHorizonIsReported(t *testing.T) {
	a := newTestAnalyzer(t)
	loadTestdata(t, a)
	require.NoError(t, a.AddIncome(model.Scenario2, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), d(10)))
	require.Len(t, a.SkippedIncomes(model.Scenario2), 1)
	assert.Equal(t, "after horizon", a.SkippedIncomes(model.Scenario2)[0].Reason)
}

func TestMutationValidation(t *testing.T) {
	a := newTestAnalyzer(t)
	bogus := model.ScenarioID(9)

	assert.ErrorIs(t, a.AddIncome(bogus, fixedNow(), d(1)), common.ErrNotFound)
	assert.ErrorIs(t, a.AddIncome(model.Scenario1, time.Time{}, d(1)), common.ErrInvalidInput)
	assert.ErrorIs(t, a.AddIncome(model.Scenario1, fixedNow(), d(0)), common.ErrInvalidInput)
	assert.ErrorIs(t, a.SetBurnRate(model.Scenario1, d(-1)), common.ErrInvalidInput)
	assert.ErrorIs(t, a.SetBurnRate(bogus, d(1)), common.ErrNotFound)
	assert.ErrorIs(t, a.SetActiveScenario(bogus), common.ErrNotFound)
	assert.ErrorIs(t, a.ClearIncomes(bogus), common.ErrNotFound)
	_, err := a.UpsertActual(model.ActualExpense, 12, 2025, d(1))
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	require.NoError(t, a.SetActiveScenario(model.Scenario3))
	assert.Equal(t, model.Scenario3, a.ActiveScenario())
}

func TestClear_PreservesScenarioIdentity(t *testing.T) {
	a := newTestAnalyzer(t)
	loadTestdata(t, a)
	_, err := a.UpsertActual(model.ActualExpense, 2, 2025, d(100))
	require.NoError(t, err)
	_, err = a.UpsertActual(model.ActualIncome, 2, 2025, d(100))
	require.NoError(t, err)
	require.NoError(t, a.AddIncome(model.Scenario2, fixedNow(), d(50)))
	require.NoError(t, a.SetBurnRate(model.Scenario2, decimal.RequireFromString("0.5")))
	require.NoError(t, a.SetActiveScenario(model.Scenario2))

	a.Clear()

	assert.True(t, a.CurrentBalance().IsZero())
	assert.Empty(t, a.Transactions())
	assert.Empty(t, a.Actuals().Expenses)
	assert.Empty(t, a.Actuals().Incomes)
	assert.Nil(t, a.Trends())
	assert.Equal(t, model.ScenarioCurrent, a.ActiveScenario())

	defaults := model.DefaultScenarios()
	for _, id := range model.AllScenarios {
		sc := a.Scenario(id)
		assert.Equal(t, id, sc.ID)
		assert.Equal(t, defaults[id].Name, sc.Name)
		assert.Equal(t, defaults[id].Color, sc.Color)
		assert.Empty(t, sc.Incomes)
		assert.Nil(t, sc.Data)
		assert.True(t, sc.BurnRateFactor.Equal(d(1)))
	}
}

func TestSummary(t *testing.T) {
	a := newTestAnalyzer(t)
	loadTestdata(t, a)
	_, err := a.UpsertActual(model.ActualIncome, 0, 2025, d(900))
	require.NoError(t, err)

	s := a.Summary()
	assert.True(t, s.HasData)
	assert.Equal(t, 6, s.Transactions)
	assert.Equal(t, SourceStatement, s.Source)
	assert.True(t, s.IncomeThisYear.Equal(d(900)))
	assert.False(t, s.HasActualMonths)
	assert.Equal(t, 1, s.Completeness.IncomeMonths)
	assert.Equal(t, a.MonthsUntilBroke(model.ScenarioCurrent), s.MonthsUntilBroke)

	missing := a.MissingRecentMonths(3)
	require.Len(t, missing, 3)
	assert.Equal(t, 1, missing[0].Month)
	assert.Equal(t, 0, missing[1].Month)
	assert.True(t, missing[1].HasIncome)
}

func TestExportImport_RoundTrip(t *testing.T) {
	a := newTestAnalyzer(t)
	loadTestdata(t, a)
	require.NoError(t, a.AddIncome(model.Scenario1, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), d(700)))
	require.NoError(t, a.SetActiveScenario(model.Scenario1))

	data, err := snapshot.Marshal(a.Export())
	require.NoError(t, err)

	b := newTestAnalyzer(t)
	st, err := snapshot.Unmarshal(data)
	require.NoError(t, err)
	b.Import(st)

	assert.Equal(t, model.Scenario1, b.ActiveScenario())
	require.Len(t, b.Transactions(), 6)
	assert.True(t, b.Transactions()[5].TransactionDate.Equal(a.Transactions()[5].TransactionDate))
	assert.True(t, b.CurrentBalance().Equal(a.CurrentBalance()))
	assert.True(t, b.Scenario(model.Scenario1).Incomes[0].Date.Equal(a.Scenario(model.Scenario1).Incomes[0].Date))
	assert.Len(t, b.Scenario(model.Scenario1).Data, 7)
	assert.True(t, b.Scenario(model.Scenario1).Data[6].Balance.Equal(a.Scenario(model.Scenario1).Data[6].Balance))
}

func TestExport_DetachedFromSession(t *testing.T) {
	a := newTestAnalyzer(t)
	loadTestdata(t, a)
	_, err := a.UpsertActual(model.ActualExpense, 1, 2025, d(1000))
	require.NoError(t, err)

	st := a.Export()
	before := st.Scenarios[model.Scenario1].Data[6].Balance

	_, err = a.UpsertActual(model.ActualExpense, 1, 2025, d(1500))
	require.NoError(t, err)
	require.NoError(t, a.AddIncome(model.Scenario1, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), d(700)))

	assert.True(t, st.ActualExpenses[0].Amount.Equal(d(1000)))
	assert.Empty(t, st.Scenarios[model.Scenario1].Incomes)
	assert.True(t, st.Scenarios[model.Scenario1].Data[6].Balance.Equal(before))
	assert.NotSame(t, a.Scenario(model.Scenario1), st.Scenarios[model.Scenario1])
}

func TestImport_ReanalysesWithoutTrends(t *testing.T) {
	a := newTestAnalyzer(t)
	loadTestdata(t, a)
	st := a.Export()
	st.Trends = nil
	st.Seasonal = nil

	var buf bytes.Buffer
	data, err := snapshot.Marshal(st)
	require.NoError(t, err)
	buf.Write(data)
	assert.Contains(t, buf.String(), `"historicalTrends": null`)

	restored, err := snapshot.Unmarshal(buf.Bytes())
	require.NoError(t, err)

	b := newTestAnalyzer(t)
	b.Import(restored)
	require.NotNil(t, b.Trends())
	require.NotNil(t, b.Seasonal())
	assert.Len(t, b.Trends().MonthlyData, 3)
}

func TestImport_SupersedesPendingLoad(t *testing.T) {
	a := newTestAnalyzer(t)
	tok := a.BeginLoad()
	l, err := a.ParseStatement(strings.NewReader("Date;Description;Amount;Balance\n01/01/2025;x;-1,00;1,00\n"), importer.NewSemicolonParser())
	require.NoError(t, err)

	a.Import(snapshot.State{Scenarios: model.DefaultScenarios()})
	assert.ErrorIs(t, a.CommitLoad(tok, l), common.ErrStaleLoad)
}

func TestForecast_CustomHorizon(t *testing.T) {
	a := newTestAnalyzer(t)
	_, err := a.Forecast(model.Scenario1, 12)
	assert.ErrorIs(t, err, common.ErrNoData)

	loadTestdata(t, a)
	require.NoError(t, a.AddIncome(model.Scenario1, time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC), d(500)))

	res, err := a.Forecast(model.Scenario1, 12)
	require.NoError(t, err)
	assert.Len(t, res.Points, 13)
	assert.Len(t, res.Applied, 1)
	assert.Empty(t, res.Skipped)
	// the cached projection keeps the session horizon, where the income misses
	assert.Len(t, a.Scenario(model.Scenario1).Data, 7)
	assert.Len(t, a.SkippedIncomes(model.Scenario1), 1)

	res, err = a.Forecast(model.Scenario1, 0)
	require.NoError(t, err)
	assert.Len(t, res.Points, 7)

	_, err = a.Forecast(model.ScenarioID(9), 3)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
