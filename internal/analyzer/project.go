package analyzer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/model"
	"github.com/cleared-dev/cashflow/internal/projection"
)

// ProjectAll recomputes the baseline and then every scenario. Without a
// ledger all projections are cleared.
func (a *Analyzer) ProjectAll() {
	if !a.HasData() {
		a.baseline = nil
		for _, sc := range a.scenarios {
			sc.Data = nil
		}
		return
	}

	start := a.CurrentBalance()
	monthly := a.MonthlyExpenses()
	anchor, _ := a.LastDate()

	base, err := projection.Project(projection.Params{
		Anchor:          anchor,
		StartingBalance: start,
		MonthlyExpense:  monthly,
		BurnRateFactor:  decimal.NewFromInt(1),
		MonthsAhead:     a.opts.MonthsAhead,
		Now:             a.opts.Now,
	})
	if err != nil {
		a.log.WithError(err).Warn("baseline projection failed, using straight-line fallback")
		a.baseline = projection.Fallback(a.opts.Now(), start, monthly, a.opts.MonthsAhead)
	} else {
		a.baseline = base.Points
	}

	for _, id := range model.AllScenarios {
		a.projectScenario(id, anchor, start, monthly)
	}
}

func (a *Analyzer) projectScenario(id model.ScenarioID, anchor time.Time, start, monthly decimal.Decimal) {
	sc := a.scenarios[id]
	res, err := projection.Project(projection.Params{
		Anchor:          anchor,
		StartingBalance: start,
		MonthlyExpense:  monthly,
		BurnRateFactor:  sc.BurnRateFactor,
		MonthsAhead:     a.opts.MonthsAhead,
		Incomes:         sc.Incomes,
		Now:             a.opts.Now,
	})
	if err != nil {
		a.log.WithError(err).WithField("scenario", id.String()).Warn("projection failed, using fallback")
		a.skipped[id] = nil
		if len(a.baseline) > 0 {
			sc.Data = projection.Clone(a.baseline)
			return
		}
		sc.Data = projection.Fallback(a.opts.Now(), start, monthly, a.opts.MonthsAhead)
		return
	}

	sc.Data = res.Points
	a.skipped[id] = res.Skipped
	for _, s := range res.Skipped {
		a.log.WithFields(logrus.Fields{
			"scenario": id.String(),
			"date":     s.Income.Date.Format("2006-01-02"),
			"amount":   s.Income.Amount.StringFixed(2),
			"reason":   s.Reason,
		}).Warn("income not applied")
	}
}

// MonthsUntilBroke is the number of whole months the scenario's projected
// balance stays non-negative. -1 means already broke; 0 without a projection.
func (a *Analyzer) MonthsUntilBroke(id model.ScenarioID) int {
	sc := a.scenarios.Get(id)
	if sc == nil || sc.Data == nil {
		return 0
	}
	return projection.MonthsUntilBroke(sc.Data)
}

// ActualTrajectory is the running balance implied by actual expenses dated
// after the last statement transaction, nil when there are none.
func (a *Analyzer) ActualTrajectory() []model.ProjectionPoint {
	anchor, ok := a.LastDate()
	if !ok {
		return nil
	}
	return a.book.ProjectActuals(anchor, a.balance)
}

// Forecast projects scenario id over a custom horizon without touching the
// cached projections. months <= 0 uses the session horizon.
func (a *Analyzer) Forecast(id model.ScenarioID, months int) (projection.Result, error) {
	sc, err := a.scenario(id)
	if err != nil {
		return projection.Result{}, err
	}
	if !a.HasData() {
		return projection.Result{}, fmt.Errorf("%w: nothing to project", common.ErrNoData)
	}
	if months <= 0 {
		months = a.opts.MonthsAhead
	}
	anchor, _ := a.LastDate()
	return projection.Project(projection.Params{
		Anchor:          anchor,
		StartingBalance: a.CurrentBalance(),
		MonthlyExpense:  a.MonthlyExpenses(),
		BurnRateFactor:  sc.BurnRateFactor,
		MonthsAhead:     months,
		Incomes:         sc.Incomes,
		Now:             a.opts.Now,
	})
}
