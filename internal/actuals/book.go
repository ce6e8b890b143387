// Package actuals keeps user-entered monthly expense and income figures that
// take precedence over statement-derived estimates.
package actuals

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/model"
	"github.com/cleared-dev/cashflow/internal/period"
)

const (
	MinYear = 2000
	MaxYear = 2100
)

// Book holds the two actual-data collections, each sorted chronologically
// and unique by (Month, Year).
type Book struct {
	Expenses []model.ActualEntry
	Incomes  []model.ActualEntry
}

// Result describes the outcome of an Upsert.
type Result struct {
	Entry   model.ActualEntry
	Updated bool // an existing entry for the month was overwritten
}

// Message is a short human description of the result.
func (r Result) Message(kind model.ActualKind) string {
	verb := "added"
	if r.Updated {
		verb = "updated"
	}
	return fmt.Sprintf("%s for %s %s", kind, period.FormatMonthKey(r.Entry.Year, r.Entry.Month), verb)
}

func (b *Book) entries(kind model.ActualKind) (*[]model.ActualEntry, error) {
	switch kind {
	case model.ActualExpense:
		return &b.Expenses, nil
	case model.ActualIncome:
		return &b.Incomes, nil
	}
	return nil, common.Invalidf("unknown actual kind %q", kind)
}

// Entries returns the collection for kind; nil for an unknown kind.
func (b *Book) Entries(kind model.ActualKind) []model.ActualEntry {
	list, err := b.entries(kind)
	if err != nil {
		return nil
	}
	return *list
}

// Validate checks month, year and amount ranges.
func Validate(month, year int, amount decimal.Decimal) error {
	if month < 0 || month > 11 {
		return common.Invalidf("month %d out of range 0-11", month)
	}
	if year < MinYear || year > MaxYear {
		return common.Invalidf("year %d out of range %d-%d", year, MinYear, MaxYear)
	}
	if !amount.IsPositive() {
		return common.Invalidf("amount must be positive, got %s", amount)
	}
	return nil
}

// Upsert records amount for (month, year), overwriting an existing entry.
func (b *Book) Upsert(kind model.ActualKind, month, year int, amount decimal.Decimal) (Result, error) {
	list, err := b.entries(kind)
	if err != nil {
		return Result{}, err
	}
	if err := Validate(month, year, amount); err != nil {
		return Result{}, err
	}

	for i := range *list {
		e := &(*list)[i]
		if e.Month == month && e.Year == year {
			e.Amount = amount
			return Result{Entry: *e, Updated: true}, nil
		}
	}

	entry := model.ActualEntry{Month: month, Year: year, Amount: amount}
	*list = append(*list, entry)
	sortEntries(*list)
	return Result{Entry: entry}, nil
}

// Remove deletes the entry for (month, year).
func (b *Book) Remove(kind model.ActualKind, month, year int) error {
	list, err := b.entries(kind)
	if err != nil {
		return err
	}
	for i, e := range *list {
		if e.Month == month && e.Year == year {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: no %s entry for %s", common.ErrNotFound, kind, period.FormatMonthKey(year, month))
}

// Clear empties both collections.
func (b *Book) Clear() {
	b.Expenses = nil
	b.Incomes = nil
}

// HasExpenses reports whether any actual expense is recorded. When true,
// actual figures override the statement-derived balance and burn.
func (b *Book) HasExpenses() bool {
	return len(b.Expenses) > 0
}

// Has reports whether kind has an entry for (month, year).
func (b *Book) Has(kind model.ActualKind, month, year int) bool {
	for _, e := range b.Entries(kind) {
		if e.Month == month && e.Year == year {
			return true
		}
	}
	return false
}

// Sort restores chronological order, e.g. after loading a snapshot.
func (b *Book) Sort() {
	sortEntries(b.Expenses)
	sortEntries(b.Incomes)
}

func sortEntries(list []model.ActualEntry) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Before(list[j]) })
}

func sum(list []model.ActualEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range list {
		total = total.Add(e.Amount)
	}
	return total
}
