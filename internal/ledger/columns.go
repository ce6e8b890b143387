package ledger

import (
	"strings"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/normalize"
)

// Columns holds header indexes; -1 means absent.
type Columns struct {
	Date        int
	ValueDate   int
	Description int
	Amount      int
	Balance     int
	Positional  bool // true when assigned by position rather than name
}

func noColumns() Columns {
	return Columns{Date: -1, ValueDate: -1, Description: -1, Amount: -1, Balance: -1}
}

func (c Columns) complete() bool {
	return c.Date >= 0 && c.Amount >= 0 && c.Balance >= 0
}

// Header patterns, already folded (lowercase, no accents).
var (
	valueDatePatterns   = []string{"αξια", "value"}
	datePatterns        = []string{"ημ/νια", "ημερομην", "κινησ", "αποστολη", "date"}
	descriptionPatterns = []string{"περιγραφη", "αιτιολογ", "desc"}
	amountPatterns      = []string{"ποσο", "amount", "χρεωση", "πιστωση"}
	balancePatterns     = []string{"υπολοιπο", "balance"}
)

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// DetectColumns identifies statement columns by name, falling back to
// position when date, amount or balance cannot be named.
func DetectColumns(headers []string) (Columns, error) {
	cols := noColumns()
	for i, h := range headers {
		folded := normalize.FoldHeader(h)
		switch {
		case containsAny(folded, valueDatePatterns):
			setOnce(&cols.ValueDate, i)
		case containsAny(folded, datePatterns):
			setOnce(&cols.Date, i)
		case containsAny(folded, descriptionPatterns):
			setOnce(&cols.Description, i)
		case containsAny(folded, amountPatterns):
			setOnce(&cols.Amount, i)
		case containsAny(folded, balancePatterns):
			setOnce(&cols.Balance, i)
		}
	}
	if cols.complete() {
		return cols, nil
	}

	cols = positional(len(headers))
	if !cols.complete() {
		return noColumns(), &common.MissingColumnsError{Headers: headers}
	}
	return cols, nil
}

func setOnce(dst *int, i int) {
	if *dst < 0 {
		*dst = i
	}
}

// positional assigns the usual bank export layout by column count.
func positional(n int) Columns {
	cols := noColumns()
	cols.Positional = true
	switch {
	case n >= 5:
		cols.Date, cols.ValueDate, cols.Description, cols.Amount, cols.Balance = 0, 1, 2, 3, 4
	case n >= 3:
		cols.Date, cols.Description, cols.Amount = 0, 1, 2
		if n >= 4 {
			cols.Balance = 3
		}
	}
	return cols
}
