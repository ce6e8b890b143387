// Package ledger builds the sorted transaction ledger from decoded statement rows.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/importer"
	"github.com/cleared-dev/cashflow/internal/model"
	"github.com/cleared-dev/cashflow/internal/normalize"
	"github.com/cleared-dev/cashflow/internal/period"
)

// Options controls ledger construction.
type Options struct {
	NormalizeYears bool
	Now            func() time.Time
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Ledger is the canonical transaction sequence plus its balance anchor.
type Ledger struct {
	Transactions  []model.Transaction
	Balance       decimal.Decimal
	Columns       Columns
	DroppedRows   int // rows without a date or with unparseable amount/balance
	DateFallbacks int // rows whose date could not be parsed and became today
	YearsShifted  int
}

// Build turns a decoded statement into a Ledger.
func Build(table *importer.RawTable, opts Options) (*Ledger, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: statement has no rows", common.ErrNoData)
	}

	cols, err := DetectColumns(table.Headers)
	if err != nil {
		return nil, err
	}

	l := &Ledger{Columns: cols}
	for _, row := range table.Rows {
		tx, fellBack, ok := buildRow(row, cols, opts)
		if !ok {
			l.DroppedRows++
			continue
		}
		if fellBack {
			l.DateFallbacks++
		}
		l.Transactions = append(l.Transactions, tx)
	}

	if len(l.Transactions) == 0 {
		return nil, fmt.Errorf("%w: no valid transactions found after parsing", common.ErrNoData)
	}

	if opts.NormalizeYears {
		l.YearsShifted = normalize.NormalizeYears(l.Transactions, opts.now().Year())
	}

	SortByDate(l.Transactions)
	l.Balance = CurrentBalance(l.Transactions)
	return l, nil
}

func buildRow(row []string, cols Columns, opts Options) (model.Transaction, bool, bool) {
	rawDate := importer.Cell(row, cols.Date)
	if rawDate == "" {
		return model.Transaction{}, false, false
	}

	amount, err := normalize.ParseAmount(importer.Cell(row, cols.Amount))
	if err != nil {
		return model.Transaction{}, false, false
	}
	balance, err := normalize.ParseAmount(importer.Cell(row, cols.Balance))
	if err != nil {
		return model.Transaction{}, false, false
	}

	txDate, fellBack := normalize.ParseDateOrNow(rawDate, opts.Now)
	valueDate := txDate
	if !fellBack {
		if vd, ok := normalize.ParseDate(importer.Cell(row, cols.ValueDate)); ok {
			valueDate = vd
		}
	}

	return model.Transaction{
		TransactionDate: txDate,
		ValueDate:       valueDate,
		Description:     importer.Cell(row, cols.Description),
		Amount:          amount,
		Balance:         balance,
	}, fellBack, true
}

// SortByDate orders txs ascending by transaction date, keeping input order for ties.
func SortByDate(txs []model.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].TransactionDate.Before(txs[j].TransactionDate)
	})
}

// CurrentBalance is the minimum balance among transactions on the latest date.
func CurrentBalance(txs []model.Transaction) decimal.Decimal {
	if len(txs) == 0 {
		return decimal.Zero
	}
	latest := txs[0].TransactionDate
	for _, tx := range txs[1:] {
		if tx.TransactionDate.After(latest) {
			latest = tx.TransactionDate
		}
	}

	var min decimal.Decimal
	found := false
	for _, tx := range txs {
		if !tx.TransactionDate.Equal(latest) {
			continue
		}
		if !found || tx.Balance.LessThan(min) {
			min = tx.Balance
			found = true
		}
	}
	return min
}

// LastDate returns the transaction date of the final ledger entry.
func (l *Ledger) LastDate() (time.Time, bool) {
	return LastDate(l.Transactions)
}

// LastDate returns the date of the last transaction in a sorted ledger.
func LastDate(txs []model.Transaction) (time.Time, bool) {
	if len(txs) == 0 {
		return time.Time{}, false
	}
	d := txs[len(txs)-1].TransactionDate
	if d.IsZero() {
		return time.Time{}, false
	}
	return d, true
}

// MonthlyExpenses averages total expenses over the calendar months spanned
// by the first and last expense (at least one month).
func MonthlyExpenses(txs []model.Transaction) decimal.Decimal {
	var first, last time.Time
	total := decimal.Zero
	n := 0
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		if n == 0 {
			first = tx.TransactionDate
		}
		last = tx.TransactionDate
		total = total.Add(tx.Amount.Abs())
		n++
	}
	if n == 0 {
		return decimal.Zero
	}

	months := period.MonthsBetween(first, last)
	if months < 1 {
		months = 1
	}
	return total.Div(decimal.NewFromInt(int64(months)))
}
