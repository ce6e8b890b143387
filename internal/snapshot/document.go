package snapshot

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/model"
)

// isoLayout matches the millisecond UTC timestamps browsers produce.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Document is the JSON shape of a snapshot.
type Document struct {
	Balance          float64                 `json:"balance"`
	Transactions     []TransactionDoc        `json:"transactions"`
	ActualExpenses   []ActualDoc             `json:"actualExpenses"`
	ActualIncomes    []ActualDoc             `json:"actualIncomes"`
	HistoricalTrends *TrendsDoc              `json:"historicalTrends"`
	SeasonalPatterns map[string]SeasonalDoc  `json:"seasonalPatterns"`
	Scenarios        map[string]*ScenarioDoc `json:"scenarios"`
	ActiveScenario   string                  `json:"activeScenario"`
	Timestamp        string                  `json:"timestamp"`
	Version          string                  `json:"version"`
}

type TransactionDoc struct {
	TransactionDate string  `json:"transactionDate"`
	ValueDate       string  `json:"valueDate"`
	Description     string  `json:"description"`
	Amount          float64 `json:"amount"`
	Balance         float64 `json:"balance"`
}

type ActualDoc struct {
	Month  int     `json:"month"`
	Year   int     `json:"year"`
	Amount float64 `json:"amount"`
}

type MonthlyDoc struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Expenses     float64 `json:"expenses"`
	Incomes      float64 `json:"incomes"`
	Transactions int     `json:"transactions"`
	EndBalance   float64 `json:"endBalance"`
}

type TrendsDoc struct {
	MonthlyData       []MonthlyDoc `json:"monthlyData"`
	AverageExpenses   float64      `json:"averageExpenses"`
	AverageIncomes    float64      `json:"averageIncomes"`
	ExpenseGrowthRate float64      `json:"expenseGrowthRate"`
	IncomeGrowthRate  float64      `json:"incomeGrowthRate"`
	Volatility        float64      `json:"volatility"`
}

type SeasonalDoc struct {
	ExpenseFactor float64 `json:"expenseFactor"`
	IncomeFactor  float64 `json:"incomeFactor"`
	SampleSize    int     `json:"sampleSize"`
}

type IncomeDoc struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type PointDoc struct {
	Date     string  `json:"date"`
	Balance  float64 `json:"balance"`
	Expenses float64 `json:"expenses"`
	Income   float64 `json:"income"`
}

type ScenarioDoc struct {
	Name           string      `json:"name"`
	Color          string      `json:"color"`
	Incomes        []IncomeDoc `json:"incomes"`
	BurnRateFactor *float64    `json:"burnRateFactor,omitempty"`
	Data           []PointDoc  `json:"data"`
}

// FormatTime renders t the way snapshot documents store dates.
func FormatTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ParseTime accepts RFC 3339 timestamps or plain YYYY-MM-DD dates. A
// timestamp keeps the wall clock it was written with, so a date recorded
// at +02:00 stays in the writer's calendar month. The result is in UTC.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Encode converts state to its document form. A zero Timestamp becomes now.
func Encode(st State) Document {
	ts := st.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	doc := Document{
		Balance:        num(st.Balance),
		Transactions:   make([]TransactionDoc, 0, len(st.Transactions)),
		ActualExpenses: encodeActuals(st.ActualExpenses),
		ActualIncomes:  encodeActuals(st.ActualIncomes),
		Scenarios:      make(map[string]*ScenarioDoc, len(model.AllScenarios)),
		ActiveScenario: st.Active.String(),
		Timestamp:      FormatTime(ts),
		Version:        Version,
	}

	for _, tx := range st.Transactions {
		doc.Transactions = append(doc.Transactions, TransactionDoc{
			TransactionDate: FormatTime(tx.TransactionDate),
			ValueDate:       FormatTime(tx.ValueDate),
			Description:     tx.Description,
			Amount:          num(tx.Amount),
			Balance:         num(tx.Balance),
		})
	}

	if st.Trends != nil {
		doc.HistoricalTrends = EncodeTrends(st.Trends)
	}
	if st.Seasonal != nil {
		doc.SeasonalPatterns = EncodeSeasonal(st.Seasonal)
	}

	for _, sc := range st.Scenarios {
		if sc == nil {
			continue
		}
		doc.Scenarios[sc.ID.String()] = EncodeScenario(sc)
	}
	return doc
}

// EncodeSeasonal keys seasonal factors by 0-based month number.
func EncodeSeasonal(p *model.SeasonalPatterns) map[string]SeasonalDoc {
	out := make(map[string]SeasonalDoc, len(p))
	for month, f := range p {
		out[strconv.Itoa(month)] = SeasonalDoc(f)
	}
	return out
}

func encodeActuals(list []model.ActualEntry) []ActualDoc {
	out := make([]ActualDoc, 0, len(list))
	for _, e := range list {
		out = append(out, ActualDoc{Month: e.Month, Year: e.Year, Amount: num(e.Amount)})
	}
	return out
}

// EncodeTrends converts trends to their document form.
func EncodeTrends(t *model.HistoricalTrends) *TrendsDoc {
	td := &TrendsDoc{
		MonthlyData:       make([]MonthlyDoc, 0, len(t.MonthlyData)),
		AverageExpenses:   num(t.AverageExpenses),
		AverageIncomes:    num(t.AverageIncomes),
		ExpenseGrowthRate: t.ExpenseGrowthRate,
		IncomeGrowthRate:  t.IncomeGrowthRate,
		Volatility:        t.Volatility,
	}
	for _, m := range t.MonthlyData {
		td.MonthlyData = append(td.MonthlyData, MonthlyDoc{
			Year:         m.Year,
			Month:        m.Month,
			Expenses:     num(m.TotalExpenses),
			Incomes:      num(m.TotalIncomes),
			Transactions: m.TransactionCount,
			EndBalance:   num(m.EndBalance),
		})
	}
	return td
}

// EncodeScenario converts a scenario, including its projection, to document form.
func EncodeScenario(sc *model.Scenario) *ScenarioDoc {
	factor := num(sc.BurnRateFactor)
	sd := &ScenarioDoc{
		Name:           sc.Name,
		Color:          sc.Color,
		Incomes:        make([]IncomeDoc, 0, len(sc.Incomes)),
		BurnRateFactor: &factor,
	}
	for _, inc := range sc.Incomes {
		sd.Incomes = append(sd.Incomes, IncomeDoc{Date: FormatTime(inc.Date), Amount: num(inc.Amount)})
	}
	if sc.Data != nil {
		sd.Data = make([]PointDoc, 0, len(sc.Data))
		for _, p := range sc.Data {
			sd.Data = append(sd.Data, PointDoc{
				Date:     FormatTime(p.Date),
				Balance:  num(p.Balance),
				Expenses: num(p.Expenses),
				Income:   num(p.Income),
			})
		}
	}
	return sd
}

// Decode converts a document back to State. Scenarios missing from the
// document keep their defaults and unknown scenario keys are ignored.
func Decode(doc Document) (State, error) {
	if doc.Transactions == nil || doc.Scenarios == nil {
		return State{}, fmt.Errorf("%w: missing transactions or scenarios", common.ErrInvalidFormat)
	}

	st := State{
		Balance:   dec(doc.Balance),
		Scenarios: model.DefaultScenarios(),
		Version:   doc.Version,
	}

	if doc.Timestamp != "" {
		if ts, err := ParseTime(doc.Timestamp); err == nil {
			st.Timestamp = ts
		}
	}

	st.Transactions = make([]model.Transaction, 0, len(doc.Transactions))
	for i, td := range doc.Transactions {
		txDate, err := ParseTime(td.TransactionDate)
		if err != nil {
			return State{}, fmt.Errorf("%w: transaction %d: %v", common.ErrInvalidFormat, i, err)
		}
		valueDate := txDate
		if td.ValueDate != "" {
			if valueDate, err = ParseTime(td.ValueDate); err != nil {
				return State{}, fmt.Errorf("%w: transaction %d: %v", common.ErrInvalidFormat, i, err)
			}
		}
		st.Transactions = append(st.Transactions, model.Transaction{
			TransactionDate: txDate,
			ValueDate:       valueDate,
			Description:     td.Description,
			Amount:          dec(td.Amount),
			Balance:         dec(td.Balance),
		})
	}

	st.ActualExpenses = decodeActuals(doc.ActualExpenses)
	st.ActualIncomes = decodeActuals(doc.ActualIncomes)

	if doc.HistoricalTrends != nil {
		st.Trends = decodeTrends(doc.HistoricalTrends)
	}
	if doc.SeasonalPatterns != nil {
		p := model.NeutralSeasonalPatterns()
		for key, sd := range doc.SeasonalPatterns {
			month, err := strconv.Atoi(key)
			if err != nil || month < 0 || month > 11 {
				continue
			}
			p[month] = model.SeasonalFactor(sd)
		}
		st.Seasonal = &p
	}

	for key, sd := range doc.Scenarios {
		id, err := model.ParseScenarioID(key)
		if err != nil || sd == nil {
			continue
		}
		if err := decodeScenario(st.Scenarios[id], sd); err != nil {
			return State{}, fmt.Errorf("%w: scenario %s: %v", common.ErrInvalidFormat, key, err)
		}
	}

	st.Active = model.ScenarioCurrent
	if id, err := model.ParseScenarioID(doc.ActiveScenario); err == nil {
		st.Active = id
	}
	return st, nil
}

func decodeActuals(list []ActualDoc) []model.ActualEntry {
	if len(list) == 0 {
		return nil
	}
	out := make([]model.ActualEntry, 0, len(list))
	for _, a := range list {
		out = append(out, model.ActualEntry{Month: a.Month, Year: a.Year, Amount: dec(a.Amount)})
	}
	return out
}

func decodeTrends(td *TrendsDoc) *model.HistoricalTrends {
	t := &model.HistoricalTrends{
		AverageExpenses:   dec(td.AverageExpenses),
		AverageIncomes:    dec(td.AverageIncomes),
		ExpenseGrowthRate: td.ExpenseGrowthRate,
		IncomeGrowthRate:  td.IncomeGrowthRate,
		Volatility:        td.Volatility,
	}
	for _, m := range td.MonthlyData {
		t.MonthlyData = append(t.MonthlyData, model.MonthlyAggregate{
			Year:             m.Year,
			Month:            m.Month,
			TotalExpenses:    dec(m.Expenses),
			TotalIncomes:     dec(m.Incomes),
			TransactionCount: m.Transactions,
			EndBalance:       dec(m.EndBalance),
		})
	}
	return t
}

func decodeScenario(sc *model.Scenario, sd *ScenarioDoc) error {
	if sd.Name != "" {
		sc.Name = sd.Name
	}
	if sd.Color != "" {
		sc.Color = sd.Color
	}
	if sd.BurnRateFactor != nil && *sd.BurnRateFactor >= 0 {
		sc.BurnRateFactor = dec(*sd.BurnRateFactor)
	}
	for _, inc := range sd.Incomes {
		d, err := ParseTime(inc.Date)
		if err != nil {
			return err
		}
		sc.Incomes = append(sc.Incomes, model.ScenarioIncome{Date: d, Amount: dec(inc.Amount)})
	}
	if sd.Data != nil {
		sc.Data = make([]model.ProjectionPoint, 0, len(sd.Data))
		for _, p := range sd.Data {
			d, err := ParseTime(p.Date)
			if err != nil {
				return err
			}
			sc.Data = append(sc.Data, model.ProjectionPoint{
				Date:     d,
				Balance:  dec(p.Balance),
				Expenses: dec(p.Expenses),
				Income:   dec(p.Income),
			})
		}
	}
	return nil
}

// Marshal encodes state as indented JSON.
func Marshal(st State) ([]byte, error) {
	data, err := json.MarshalIndent(Encode(st), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Unmarshal parses a JSON snapshot. Malformed JSON and documents without
// transactions or scenarios yield common.ErrInvalidFormat.
func Unmarshal(data []byte) (State, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, fmt.Errorf("%w: %v", common.ErrInvalidFormat, err)
	}
	return Decode(doc)
}
