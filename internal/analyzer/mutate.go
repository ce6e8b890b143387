package analyzer

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/cashflow/internal/actuals"
	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/model"
)

// UpsertActual records an actual monthly figure and re-projects.
func (a *Analyzer) UpsertActual(kind model.ActualKind, month, year int, amount decimal.Decimal) (actuals.Result, error) {
	res, err := a.book.Upsert(kind, month, year, amount)
	if err != nil {
		return actuals.Result{}, err
	}
	a.ProjectAll()
	a.log.WithFields(logrus.Fields{
		"kind":    kind,
		"month":   month + 1,
		"year":    year,
		"updated": res.Updated,
	}).Info("actual entry recorded")
	return res, nil
}

// RemoveActual deletes an actual monthly figure and re-projects.
func (a *Analyzer) RemoveActual(kind model.ActualKind, month, year int) error {
	if err := a.book.Remove(kind, month, year); err != nil {
		return err
	}
	a.ProjectAll()
	return nil
}

func (a *Analyzer) scenario(id model.ScenarioID) (*model.Scenario, error) {
	sc := a.scenarios.Get(id)
	if sc == nil {
		return nil, fmt.Errorf("%w: scenario %d", common.ErrNotFound, int(id))
	}
	return sc, nil
}

// NoonUTC normalises an income date to midday so it never drifts across a
// day boundary.
func NoonUTC(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
}

// AddIncome adds a one-time income to scenario id.
func (a *Analyzer) AddIncome(id model.ScenarioID, date time.Time, amount decimal.Decimal) error {
	sc, err := a.scenario(id)
	if err != nil {
		return err
	}
	if date.IsZero() {
		return common.Invalidf("income date is required")
	}
	if !amount.IsPositive() {
		return common.Invalidf("income amount must be positive, got %s", amount)
	}

	sc.Incomes = append(sc.Incomes, model.ScenarioIncome{Date: NoonUTC(date), Amount: amount})
	sort.SliceStable(sc.Incomes, func(i, j int) bool {
		return sc.Incomes[i].Date.Before(sc.Incomes[j].Date)
	})
	a.ProjectAll()
	return nil
}

// RemoveIncome removes the income at index (in date order) from scenario id.
func (a *Analyzer) RemoveIncome(id model.ScenarioID, index int) error {
	sc, err := a.scenario(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(sc.Incomes) {
		return fmt.Errorf("%w: income %d in %s", common.ErrNotFound, index, id)
	}
	sc.Incomes = append(sc.Incomes[:index], sc.Incomes[index+1:]...)
	a.ProjectAll()
	return nil
}

// ClearIncomes removes every income from scenario id.
func (a *Analyzer) ClearIncomes(id model.ScenarioID) error {
	sc, err := a.scenario(id)
	if err != nil {
		return err
	}
	sc.Incomes = nil
	a.ProjectAll()
	return nil
}

// SetBurnRate sets the expense multiplier of scenario id (1 = unchanged).
func (a *Analyzer) SetBurnRate(id model.ScenarioID, factor decimal.Decimal) error {
	sc, err := a.scenario(id)
	if err != nil {
		return err
	}
	if factor.IsNegative() {
		return common.Invalidf("burn rate factor must not be negative, got %s", factor)
	}
	sc.BurnRateFactor = factor
	a.ProjectAll()
	return nil
}

// SetActiveScenario switches the scenario being edited.
func (a *Analyzer) SetActiveScenario(id model.ScenarioID) error {
	if _, err := a.scenario(id); err != nil {
		return err
	}
	a.active = id
	a.ProjectAll()
	return nil
}
