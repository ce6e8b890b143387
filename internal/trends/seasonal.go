package trends

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashflow/internal/model"
)

// Seasonal computes per-calendar-month factors relative to the overall
// averages in t. Months never observed keep a factor of 1 and no samples.
func Seasonal(t *model.HistoricalTrends) model.SeasonalPatterns {
	patterns := model.NeutralSeasonalPatterns()
	if t == nil {
		return patterns
	}

	var expSum, incSum [12]decimal.Decimal
	var counts [12]int
	for _, m := range t.MonthlyData {
		if m.Month < 0 || m.Month > 11 {
			continue
		}
		expSum[m.Month] = expSum[m.Month].Add(m.TotalExpenses)
		incSum[m.Month] = incSum[m.Month].Add(m.TotalIncomes)
		counts[m.Month]++
	}

	for month := range patterns {
		if counts[month] == 0 {
			continue
		}
		n := decimal.NewFromInt(int64(counts[month]))
		patterns[month] = model.SeasonalFactor{
			ExpenseFactor: ratio(expSum[month].Div(n), t.AverageExpenses),
			IncomeFactor:  ratio(incSum[month].Div(n), t.AverageIncomes),
			SampleSize:    counts[month],
		}
	}
	return patterns
}

func ratio(v, overall decimal.Decimal) float64 {
	if !overall.IsPositive() {
		return 1
	}
	return v.Div(overall).InexactFloat64()
}
