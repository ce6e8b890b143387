package api

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashflow/internal/actuals"
	"github.com/cleared-dev/cashflow/internal/analyzer"
	"github.com/cleared-dev/cashflow/internal/model"
	"github.com/cleared-dev/cashflow/internal/projection"
	"github.com/cleared-dev/cashflow/internal/snapshot"
)

func num(d decimal.Decimal) float64 { return d.InexactFloat64() }

type completenessDoc struct {
	ExpenseMonths  int     `json:"expenseMonths"`
	IncomeMonths   int     `json:"incomeMonths"`
	ExpenseRatio   float64 `json:"expenseRatio"`
	IncomeRatio    float64 `json:"incomeRatio"`
	Sufficient     bool    `json:"sufficient"`
	Recommendation string  `json:"recommendation"`
}

type warningsDoc struct {
	DroppedRows   int `json:"droppedRows"`
	DateFallbacks int `json:"dateFallbacks"`
	YearsShifted  int `json:"yearsShifted"`
}

type summaryDoc struct {
	HasData          bool            `json:"hasData"`
	Source           string          `json:"source"`
	Balance          float64         `json:"balance"`
	StatementBalance float64         `json:"statementBalance"`
	MonthlyExpenses  float64         `json:"monthlyExpenses"`
	MonthlyIncome    float64         `json:"monthlyIncome"`
	NetMonthly       float64         `json:"netMonthly"`
	IncomeThisYear   float64         `json:"incomeThisYear"`
	Transactions     int             `json:"transactions"`
	LastDate         string          `json:"lastDate,omitempty"`
	ActiveScenario   string          `json:"activeScenario"`
	MonthsUntilBroke int             `json:"monthsUntilBroke"`
	ActualMonthsLeft *float64        `json:"actualMonthsLeft,omitempty"`
	Completeness     completenessDoc `json:"completeness"`
	Warnings         warningsDoc     `json:"warnings"`
}

func encodeSummary(s analyzer.Summary) summaryDoc {
	doc := summaryDoc{
		HasData:          s.HasData,
		Source:           string(s.Source),
		Balance:          num(s.Balance),
		StatementBalance: num(s.StatementBalance),
		MonthlyExpenses:  num(s.MonthlyExpenses),
		MonthlyIncome:    num(s.MonthlyIncome),
		NetMonthly:       num(s.NetMonthly),
		IncomeThisYear:   num(s.IncomeThisYear),
		Transactions:     s.Transactions,
		ActiveScenario:   s.ActiveScenario.String(),
		MonthsUntilBroke: s.MonthsUntilBroke,
		Completeness: completenessDoc{
			ExpenseMonths:  s.Completeness.ExpenseMonths,
			IncomeMonths:   s.Completeness.IncomeMonths,
			ExpenseRatio:   actuals.Ratio(s.Completeness.ExpenseMonths),
			IncomeRatio:    actuals.Ratio(s.Completeness.IncomeMonths),
			Sufficient:     s.Completeness.Sufficient(),
			Recommendation: s.Completeness.Recommendation(),
		},
		Warnings: warningsDoc(s.Warnings),
	}
	if !s.LastDate.IsZero() {
		doc.LastDate = snapshot.FormatTime(s.LastDate)
	}
	if s.HasActualMonths {
		left := s.ActualMonthsLeft
		doc.ActualMonthsLeft = &left
	}
	return doc
}

type trendsDoc struct {
	HistoricalTrends *snapshot.TrendsDoc             `json:"historicalTrends"`
	SeasonalPatterns map[string]snapshot.SeasonalDoc `json:"seasonalPatterns"`
}

type scenarioDoc struct {
	ID               string `json:"id"`
	Active           bool   `json:"active"`
	MonthsUntilBroke int    `json:"monthsUntilBroke"`
	*snapshot.ScenarioDoc
}

type pointDoc struct {
	snapshot.PointDoc
	Confidence float64 `json:"confidence"`
}

type skipDoc struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

type projectionDoc struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Months           int        `json:"months"`
	MonthsUntilBroke int        `json:"monthsUntilBroke"`
	Points           []pointDoc `json:"points"`
	Skipped          []skipDoc  `json:"skipped"`
	// ActualTrajectory is the balance path from recorded expenses dated
	// after the statement. It is empty when there are none.
	ActualTrajectory []snapshot.PointDoc `json:"actualTrajectory"`
}

func encodeProjection(sc *model.Scenario, res projection.Result, actual []model.ProjectionPoint) projectionDoc {
	doc := projectionDoc{
		ID:               sc.ID.String(),
		Name:             sc.Name,
		Months:           len(res.Points) - 1,
		MonthsUntilBroke: projection.MonthsUntilBroke(res.Points),
		Points:           make([]pointDoc, 0, len(res.Points)),
		Skipped:          make([]skipDoc, 0, len(res.Skipped)),
		ActualTrajectory: make([]snapshot.PointDoc, 0, len(actual)),
	}
	for i, p := range res.Points {
		doc.Points = append(doc.Points, pointDoc{
			PointDoc: snapshot.PointDoc{
				Date:     snapshot.FormatTime(p.Date),
				Balance:  num(p.Balance),
				Expenses: num(p.Expenses),
				Income:   num(p.Income),
			},
			Confidence: projection.Confidence(i),
		})
	}
	for _, sk := range res.Skipped {
		doc.Skipped = append(doc.Skipped, skipDoc{
			Date:   snapshot.FormatTime(sk.Income.Date),
			Amount: num(sk.Income.Amount),
			Reason: sk.Reason,
		})
	}
	for _, p := range actual {
		doc.ActualTrajectory = append(doc.ActualTrajectory, snapshot.PointDoc{
			Date:     snapshot.FormatTime(p.Date),
			Balance:  num(p.Balance),
			Expenses: num(p.Expenses),
			Income:   num(p.Income),
		})
	}
	return doc
}

type actualDoc struct {
	Period string  `json:"period"`
	Month  int     `json:"month"`
	Year   int     `json:"year"`
	Amount float64 `json:"amount"`
}

type actualsDoc struct {
	Expenses []actualDoc `json:"expenses"`
	Incomes  []actualDoc `json:"incomes"`
}

type monthStatusDoc struct {
	Period     string `json:"period"`
	HasExpense bool   `json:"hasExpense"`
	HasIncome  bool   `json:"hasIncome"`
}

type transactionsDoc struct {
	Transactions []snapshot.TransactionDoc `json:"transactions"`
}

type actualRequest struct {
	Period string          `json:"period"`
	Amount decimal.Decimal `json:"amount"`
}

type actualResponse struct {
	Message string    `json:"message"`
	Updated bool      `json:"updated"`
	Entry   actualDoc `json:"entry"`
}

type incomeRequest struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type burnRateRequest struct {
	Factor decimal.Decimal `json:"factor"`
}

type activeRequest struct {
	Scenario string `json:"scenario"`
}
