// Package projection produces month-by-month balance forecasts with a burn
// rate multiplier and one-time income injections.
package projection

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/model"
)

// DefaultMonthsAhead is the forecast horizon when none is configured.
const DefaultMonthsAhead = 24

// MaxMonths bounds any forecast horizon, configured or requested.
const MaxMonths = 600

// Skip reasons.
const (
	ReasonInvalidAmount = "invalid amount"
	ReasonAfterHorizon  = "after horizon"
	ReasonNoMonth       = "no suitable month"
)

// Params are the inputs of a single projection run.
type Params struct {
	Anchor          time.Time // zero means now
	StartingBalance decimal.Decimal
	MonthlyExpense  decimal.Decimal
	BurnRateFactor  decimal.Decimal
	MonthsAhead     int
	Incomes         []model.ScenarioIncome
	Now             func() time.Time
}

// Placement records where an income landed.
type Placement struct {
	Income model.ScenarioIncome
	Index  int
	Exact  bool // matched by calendar month rather than nearest later point
}

// Skip records an income that was not applied.
type Skip struct {
	Income model.ScenarioIncome
	Reason string
}

// Result is a projection plus an account of the incomes.
type Result struct {
	Points  []model.ProjectionPoint
	Applied []Placement
	Skipped []Skip
}

// AdjustedExpense is the monthly expense scaled by the burn rate factor.
func (p Params) AdjustedExpense() decimal.Decimal {
	return p.MonthlyExpense.Mul(p.BurnRateFactor)
}

func (p Params) anchor() time.Time {
	if !p.Anchor.IsZero() {
		return p.Anchor
	}
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Project runs the forecast. It returns exactly MonthsAhead+1 points; index 0
// is the anchor with the starting balance and zero deltas.
func Project(p Params) (Result, error) {
	if p.MonthsAhead < 0 {
		return Result{}, common.Invalidf("months ahead must not be negative, got %d", p.MonthsAhead)
	}
	if p.BurnRateFactor.IsNegative() {
		return Result{}, common.Invalidf("burn rate factor must not be negative, got %s", p.BurnRateFactor)
	}

	anchor := p.anchor()
	adjusted := p.AdjustedExpense()

	points := make([]model.ProjectionPoint, p.MonthsAhead+1)
	points[0] = model.ProjectionPoint{
		Date:     anchor,
		Balance:  p.StartingBalance,
		Expenses: decimal.Zero,
		Income:   decimal.Zero,
	}
	for i := 1; i <= p.MonthsAhead; i++ {
		points[i] = model.ProjectionPoint{
			Date:     anchor.AddDate(0, i, 0),
			Balance:  points[i-1].Balance.Sub(adjusted),
			Expenses: adjusted,
			Income:   decimal.Zero,
		}
	}

	res := Result{Points: points}
	for _, inc := range p.Incomes {
		if !inc.Amount.IsPositive() {
			res.Skipped = append(res.Skipped, Skip{Income: inc, Reason: ReasonInvalidAmount})
			continue
		}
		idx, exact, reason := target(points, inc.Date)
		if idx < 0 {
			res.Skipped = append(res.Skipped, Skip{Income: inc, Reason: reason})
			continue
		}
		inject(points, idx, inc.Amount)
		res.Applied = append(res.Applied, Placement{Income: inc, Index: idx, Exact: exact})
	}
	return res, nil
}

// target finds the point an income dated at d belongs to.
func target(points []model.ProjectionPoint, d time.Time) (int, bool, string) {
	if d.Before(points[0].Date) {
		return 0, false, ""
	}
	if d.After(points[len(points)-1].Date) {
		return -1, false, ReasonAfterHorizon
	}

	for i, pt := range points {
		if pt.Date.Year() == d.Year() && pt.Date.Month() == d.Month() {
			return i, true, ""
		}
	}

	best := -1
	var bestDiff time.Duration
	for i, pt := range points {
		if pt.Date.Before(d) {
			continue
		}
		diff := pt.Date.Sub(d)
		if best < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best < 0 {
		return -1, false, ReasonNoMonth
	}
	return best, false, ""
}

// inject adds amount to the income at idx and to every balance from idx on.
func inject(points []model.ProjectionPoint, idx int, amount decimal.Decimal) {
	points[idx].Income = points[idx].Income.Add(amount)
	for j := idx; j < len(points); j++ {
		points[j].Balance = points[j].Balance.Add(amount)
	}
}

// MonthsUntilBroke returns the index before the first negative balance, or
// len(points)-1 when the balance never goes negative. -1 means the balance
// is already negative at the anchor; an empty projection yields 0.
func MonthsUntilBroke(points []model.ProjectionPoint) int {
	for i, pt := range points {
		if pt.Balance.IsNegative() {
			return i - 1
		}
	}
	if len(points) == 0 {
		return 0
	}
	return len(points) - 1
}

// Fallback is the synthetic straight-line trajectory start - i*monthly used
// when a regular projection cannot be produced.
func Fallback(anchor time.Time, start, monthly decimal.Decimal, months int) []model.ProjectionPoint {
	if months < 0 {
		months = 0
	}
	points := make([]model.ProjectionPoint, months+1)
	for i := range points {
		expenses := monthly
		if i == 0 {
			expenses = decimal.Zero
		}
		points[i] = model.ProjectionPoint{
			Date:     anchor.AddDate(0, i, 0),
			Balance:  start.Sub(monthly.Mul(decimal.NewFromInt(int64(i)))),
			Expenses: expenses,
			Income:   decimal.Zero,
		}
	}
	return points
}

// Clone copies a projection so callers can hold it independently.
func Clone(points []model.ProjectionPoint) []model.ProjectionPoint {
	if points == nil {
		return nil
	}
	out := make([]model.ProjectionPoint, len(points))
	copy(out, points)
	return out
}

// Describe renders a skip for logs and CLI output.
func (s Skip) Describe() string {
	return fmt.Sprintf("%s on %s: %s", s.Income.Amount.StringFixed(2), s.Income.Date.Format("2006-01-02"), s.Reason)
}

// Confidence levels attached to projection points by distance from the anchor.
const (
	ConfidenceNear   = 0.9
	ConfidenceMedium = 0.7
	ConfidenceLong   = 0.5
)

// Confidence returns how much weight to give the point at index. Up to three
// months out is near term, up to a year is medium.
func Confidence(index int) float64 {
	switch {
	case index <= 3:
		return ConfidenceNear
	case index <= 12:
		return ConfidenceMedium
	default:
		return ConfidenceLong
	}
}
