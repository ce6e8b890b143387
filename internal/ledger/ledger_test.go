package ledger

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/importer"
	"github.com/cleared-dev/cashflow/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedNow() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

func TestDetectColumns_Greek(t *testing.T) {
	cols, err := DetectColumns([]string{"Ημ/νία Κίνησης", "Ημ/νία Αξίας", "Περιγραφή", "Ποσό", "Υπόλοιπο"})
	require.NoError(t, err)
	assert.Equal(t, 0, cols.Date)
	assert.Equal(t, 1, cols.ValueDate)
	assert.Equal(t, 2, cols.Description)
	assert.Equal(t, 3, cols.Amount)
	assert.Equal(t, 4, cols.Balance)
	assert.False(t, cols.Positional)
}

func TestDetectColumns_EnglishReordered(t *testing.T) {
	cols, err := DetectColumns([]string{"Balance", "Description", "Amount", "Value Date", "Date"})
	require.NoError(t, err)
	assert.Equal(t, 4, cols.Date)
	assert.Equal(t, 3, cols.ValueDate)
	assert.Equal(t, 1, cols.Description)
	assert.Equal(t, 2, cols.Amount)
	assert.Equal(t, 0, cols.Balance)
}

func TestDetectColumns_PositionalFallback(t *testing.T) {
	cols, err := DetectColumns([]string{"c1", "c2", "c3", "c4", "c5", "c6"})
	require.NoError(t, err)
	assert.True(t, cols.Positional)
	assert.Equal(t, Columns{Date: 0, ValueDate: 1, Description: 2, Amount: 3, Balance: 4, Positional: true}, cols)

	cols, err = DetectColumns([]string{"x", "y", "z", "w"})
	require.NoError(t, err)
	assert.Equal(t, Columns{Date: 0, ValueDate: -1, Description: 1, Amount: 2, Balance: 3, Positional: true}, cols)
}

func TestDetectColumns_Missing(t *testing.T) {
	_, err := DetectColumns([]string{"x", "y", "z"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingColumns)

	_, err = DetectColumns([]string{"Date", "Amount"})
	assert.ErrorIs(t, err, common.ErrMissingColumns)
}

func TestBuild_FromTestdata(t *testing.T) {
	f, err := os.Open("../../testdata/statement.csv")
	require.NoError(t, err)
	defer f.Close()

	table, err := importer.NewSemicolonParser().Parse(f)
	require.NoError(t, err)

	l, err := Build(table, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, l.Transactions, 6)
	assert.Equal(t, 0, l.DroppedRows)
	assert.Equal(t, 0, l.DateFallbacks)

	first := l.Transactions[0]
	assert.Equal(t, "ΜΙΣΘΟΔΟΣΙΑ", first.Description)
	assert.True(t, first.Amount.Equal(dec("2500")))
	assert.True(t, first.Balance.Equal(dec("4000")))

	rent := l.Transactions[2]
	assert.True(t, rent.TransactionDate.Equal(date(2025, 2, 5)))
	assert.True(t, rent.ValueDate.Equal(date(2025, 2, 6)))

	// Two entries on 03/03; the lower balance is the anchor.
	assert.True(t, l.Balance.Equal(dec("2844.50")))
	last, ok := l.LastDate()
	require.True(t, ok)
	assert.True(t, last.Equal(date(2025, 3, 3)))
}

func TestBuild_SortsAndDropsInvalidRows(t *testing.T) {
	table := &importer.RawTable{
		Headers: []string{"Date", "Description", "Amount", "Balance"},
		Rows: [][]string{
			{"10/03/2025", "late", "-10,00", "90,00"},
			{"01/01/2025", "early", "100,00", "100,00"},
			{"", "no date", "-1,00", "1,00"},
			{"05/02/2025", "bad amount", "n/a", "1,00"},
			{"06/02/2025", "bad balance", "-1,00", ""},
			{"15/02/2025", "middle", "-5,00", "95,00"},
		},
	}

	l, err := Build(table, Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, 3, l.DroppedRows)
	require.Len(t, l.Transactions, 3)
	for i := 1; i < len(l.Transactions); i++ {
		assert.False(t, l.Transactions[i].TransactionDate.Before(l.Transactions[i-1].TransactionDate))
	}
	assert.Equal(t, "early", l.Transactions[0].Description)
	assert.Equal(t, "late", l.Transactions[2].Description)
}

func TestBuild_DateFallbackToNow(t *testing.T) {
	table := &importer.RawTable{
		Headers: []string{"Date", "Description", "Amount", "Balance"},
		Rows: [][]string{
			{"01/01/2025", "ok", "-1,00", "10,00"},
			{"sometime", "odd", "-2,00", "8,00"},
		},
	}
	l, err := Build(table, Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, 1, l.DateFallbacks)
	assert.True(t, l.Transactions[1].TransactionDate.Equal(date(2025, 6, 1)))
	assert.True(t, l.Transactions[1].ValueDate.Equal(date(2025, 6, 1)))
}

func TestBuild_NormalizeYears(t *testing.T) {
	table := &importer.RawTable{
		Headers: []string{"Date", "Description", "Amount", "Balance"},
		Rows: [][]string{
			{"01/12/2024", "a", "-1,00", "10,00"},
			{"01/01/2029", "b", "-1,00", "9,00"},
		},
	}
	l, err := Build(table, Options{Now: fixedNow, NormalizeYears: true})
	require.NoError(t, err)
	assert.Equal(t, 4, l.YearsShifted)
	assert.Equal(t, 2025, l.Transactions[1].TransactionDate.Year())
}

func TestBuild_NoData(t *testing.T) {
	table := &importer.RawTable{
		Headers: []string{"Date", "Description", "Amount", "Balance"},
		Rows:    [][]string{{"01/01/2025", "x", "bad", "bad"}},
	}
	_, err := Build(table, Options{})
	assert.ErrorIs(t, err, common.ErrNoData)

	_, err = Build(&importer.RawTable{Headers: []string{"a"}}, Options{})
	assert.ErrorIs(t, err, common.ErrNoData)
}

func TestBuild_MissingColumns(t *testing.T) {
	table := &importer.RawTable{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}
	_, err := Build(table, Options{})
	assert.ErrorIs(t, err, common.ErrMissingColumns)
}

func TestCurrentBalance(t *testing.T) {
	txs := []model.Transaction{
		{TransactionDate: date(2025, 1, 1), Balance: dec("5")},
		{TransactionDate: date(2025, 1, 2), Balance: dec("300")},
		{TransactionDate: date(2025, 1, 2), Balance: dec("120")},
		{TransactionDate: date(2025, 1, 2), Balance: dec("250")},
	}
	assert.True(t, CurrentBalance(txs).Equal(dec("120")))
	assert.True(t, CurrentBalance(nil).IsZero())
}

func TestMonthlyExpenses(t *testing.T) {
	txs := []model.Transaction{
		{TransactionDate: date(2025, 1, 10), Amount: dec("-300")},
		{TransactionDate: date(2025, 2, 10), Amount: dec("1000")},
		{TransactionDate: date(2025, 3, 20), Amount: dec("-300")},
	}
	// 600 spread over Jan..Mar = 2 months apart.
	assert.True(t, MonthlyExpenses(txs).Equal(dec("300")), MonthlyExpenses(txs).String())

	single := []model.Transaction{{TransactionDate: date(2025, 1, 10), Amount: dec("-250")}}
	assert.True(t, MonthlyExpenses(single).Equal(dec("250")))

	assert.True(t, MonthlyExpenses([]model.Transaction{{Amount: dec("5")}}).IsZero())
}

func TestLastDate_Empty(t *testing.T) {
	_, ok := LastDate(nil)
	assert.False(t, ok)
}
