// Package trends characterises historical cash flow from a ledger: monthly
// buckets, averages, a two-point growth estimate, volatility and seasonality.
package trends

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashflow/internal/model"
)

type bucketKey struct {
	year, month int
}

// Analyze aggregates txs into calendar-month buckets and derives the trend
// figures. Returns nil when txs is empty.
func Analyze(txs []model.Transaction) *model.HistoricalTrends {
	buckets := Bucket(txs)
	if len(buckets) == 0 {
		return nil
	}

	sumExp, sumInc := decimal.Zero, decimal.Zero
	expenses := make([]float64, len(buckets))
	incomes := make([]float64, len(buckets))
	net := make([]float64, len(buckets))
	for i, b := range buckets {
		sumExp = sumExp.Add(b.TotalExpenses)
		sumInc = sumInc.Add(b.TotalIncomes)
		expenses[i] = b.TotalExpenses.InexactFloat64()
		incomes[i] = b.TotalIncomes.InexactFloat64()
		net[i] = b.Net().InexactFloat64()
	}

	n := decimal.NewFromInt(int64(len(buckets)))
	return &model.HistoricalTrends{
		MonthlyData:       buckets,
		AverageExpenses:   sumExp.Div(n),
		AverageIncomes:    sumInc.Div(n),
		ExpenseGrowthRate: GrowthRate(expenses),
		IncomeGrowthRate:  GrowthRate(incomes),
		Volatility:        Volatility(net),
	}
}

// Bucket groups transactions by (year, month) in chronological order.
// EndBalance is the balance of the last transaction seen in each month.
func Bucket(txs []model.Transaction) []model.MonthlyAggregate {
	index := make(map[bucketKey]int)
	var out []model.MonthlyAggregate
	for _, tx := range txs {
		k := bucketKey{tx.TransactionDate.Year(), int(tx.TransactionDate.Month()) - 1}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, model.MonthlyAggregate{
				Year:          k.year,
				Month:         k.month,
				TotalExpenses: decimal.Zero,
				TotalIncomes:  decimal.Zero,
			})
		}
		b := &out[i]
		if tx.IsExpense() {
			b.TotalExpenses = b.TotalExpenses.Add(tx.Amount.Abs())
		} else {
			b.TotalIncomes = b.TotalIncomes.Add(tx.Amount)
		}
		b.TransactionCount++
		b.EndBalance = tx.Balance
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// GrowthRate compares the mean of the second half of values against the
// first half. The first half takes the extra element on odd counts.
func GrowthRate(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	split := (n + 1) / 2
	firstAvg := mean(values[:split])
	secondAvg := mean(values[split:])
	if firstAvg == 0 {
		return 0
	}
	return (secondAvg - firstAvg) / firstAvg
}

// Volatility is the population standard deviation of values.
func Volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
