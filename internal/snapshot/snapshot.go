// Package snapshot exports and imports the full analysis state as a
// versioned JSON document, and archives documents in SQLite.
package snapshot

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashflow/internal/model"
)

// Version is written to every exported document.
const Version = "2.0"

// State is everything a snapshot carries, in domain types.
type State struct {
	Balance        decimal.Decimal
	Transactions   []model.Transaction
	ActualExpenses []model.ActualEntry
	ActualIncomes  []model.ActualEntry
	Trends         *model.HistoricalTrends
	Seasonal       *model.SeasonalPatterns
	Scenarios      model.ScenarioSet
	Active         model.ScenarioID
	Timestamp      time.Time
	Version        string
}

// DefaultFileName is the export file name for the day of now.
func DefaultFileName(now time.Time) string {
	return "cashflow_data_" + now.Format("2006-01-02") + ".json"
}
