package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/model"
	"github.com/cleared-dev/cashflow/internal/period"
	"github.com/cleared-dev/cashflow/internal/projection"
	"github.com/cleared-dev/cashflow/internal/snapshot"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc := encodeSummary(s.an.Summary())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var doc trendsDoc
	if t := s.an.Trends(); t != nil {
		doc.HistoricalTrends = snapshot.EncodeTrends(t)
	}
	if p := s.an.Seasonal(); p != nil {
		doc.SeasonalPatterns = snapshot.EncodeSeasonal(p)
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := s.an.Transactions()
	doc := transactionsDoc{Transactions: make([]snapshot.TransactionDoc, 0, len(txs))}
	for _, tx := range txs {
		doc.Transactions = append(doc.Transactions, snapshot.TransactionDoc{
			TransactionDate: snapshot.FormatTime(tx.TransactionDate),
			ValueDate:       snapshot.FormatTime(tx.ValueDate),
			Description:     tx.Description,
			Amount:          num(tx.Amount),
			Balance:         num(tx.Balance),
		})
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleStatement parses the uploaded file outside the lock and commits it
// under the lock; a newer upload started meanwhile wins.
func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	parser, err := s.registry.Lookup(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	tok := s.an.BeginLoad()
	s.mu.Unlock()

	l, err := s.an.ParseStatement(http.MaxBytesReader(w, r.Body, maxUpload), parser)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.an.CommitLoad(tok, l); err != nil {
		s.writeError(w, err)
		return
	}
	s.afterMutation("load_statement", "", fmt.Sprintf("%d transactions", len(l.Transactions)))
	writeJSON(w, http.StatusOK, encodeSummary(s.an.Summary()))
}

func parseKind(r *http.Request) (model.ActualKind, error) {
	kind, err := model.ParseActualKind(mux.Vars(r)["kind"])
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrNotFound, err)
	}
	return kind, nil
}

func parseScenario(r *http.Request) (model.ScenarioID, error) {
	id, err := model.ParseScenarioID(mux.Vars(r)["id"])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrNotFound, err)
	}
	return id, nil
}

func toActualDocs(list []model.ActualEntry) []actualDoc {
	out := make([]actualDoc, 0, len(list))
	for _, e := range list {
		out = append(out, actualDoc{
			Period: period.FormatMonthKey(e.Year, e.Month),
			Month:  e.Month,
			Year:   e.Year,
			Amount: num(e.Amount),
		})
	}
	return out
}

func (s *Server) handleListActuals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	book := s.an.Actuals()
	doc := actualsDoc{
		Expenses: toActualDocs(book.Expenses),
		Incomes:  toActualDocs(book.Incomes),
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleMissing(w http.ResponseWriter, r *http.Request) {
	n := 3
	if v := r.URL.Query().Get("months"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 36 {
			s.writeError(w, common.Invalidf("months must be between 1 and 36"))
			return
		}
		n = parsed
	}

	s.mu.Lock()
	missing := s.an.MissingRecentMonths(n)
	s.mu.Unlock()

	out := make([]monthStatusDoc, 0, len(missing))
	for _, m := range missing {
		out = append(out, monthStatusDoc{
			Period:     period.FormatMonthKey(m.Year, m.Month),
			HasExpense: m.HasExpense,
			HasIncome:  m.HasIncome,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpsertActual(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req actualRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	year, month, err := period.ParseMonthKey(req.Period)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}

	var resp actualResponse
	err = s.mutate("upsert_actual", "", fmt.Sprintf("%s %s %s", kind, req.Period, req.Amount.StringFixed(2)), func() error {
		res, err := s.an.UpsertActual(kind, month, year, req.Amount)
		if err != nil {
			return err
		}
		resp = actualResponse{
			Message: res.Message(kind),
			Updated: res.Updated,
			Entry:   toActualDocs([]model.ActualEntry{res.Entry})[0],
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRemoveActual takes a 1-based month in the path.
func (s *Server) handleRemoveActual(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	vars := mux.Vars(r)
	year, _ := strconv.Atoi(vars["year"])
	month, _ := strconv.Atoi(vars["month"])
	if month < 1 || month > 12 {
		s.writeError(w, common.Invalidf("month must be between 1 and 12, got %d", month))
		return
	}

	key := period.FormatMonthKey(year, month-1)
	err = s.mutate("remove_actual", "", fmt.Sprintf("%s %s", kind, key), func() error {
		return s.an.RemoveActual(kind, month-1, year)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.an.ActiveScenario()
	out := make([]scenarioDoc, 0, len(model.AllScenarios))
	for _, sc := range s.an.Scenarios() {
		out = append(out, scenarioDoc{
			ID:               sc.ID.String(),
			Active:           sc.ID == active,
			MonthsUntilBroke: s.an.MonthsUntilBroke(sc.ID),
			ScenarioDoc:      snapshot.EncodeScenario(sc),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	id, err := parseScenario(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	months := 0
	if v := r.URL.Query().Get("months"); v != "" {
		months, err = strconv.Atoi(v)
		if err != nil || months < 1 || months > projection.MaxMonths {
			s.writeError(w, common.Invalidf("months must be between 1 and %d", projection.MaxMonths))
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.an.Forecast(id, months)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeProjection(s.an.Scenario(id), res, s.an.ActualTrajectory()))
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	id, err := parseScenario(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req incomeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	date, err := snapshot.ParseTime(req.Date)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}

	err = s.mutate("add_income", id.String(), fmt.Sprintf("%s on %s", req.Amount.StringFixed(2), date.Format("2006-01-02")), func() error {
		return s.an.AddIncome(id, date, req.Amount)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeScenario(w, http.StatusCreated, id)
}

func (s *Server) handleRemoveIncome(w http.ResponseWriter, r *http.Request) {
	id, err := parseScenario(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	index, _ := strconv.Atoi(mux.Vars(r)["index"])
	err = s.mutate("remove_income", id.String(), fmt.Sprintf("index %d", index), func() error {
		return s.an.RemoveIncome(id, index)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeScenario(w, http.StatusOK, id)
}

func (s *Server) handleClearIncomes(w http.ResponseWriter, r *http.Request) {
	id, err := parseScenario(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.mutate("clear_incomes", id.String(), "", func() error {
		return s.an.ClearIncomes(id)
	}); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeScenario(w, http.StatusOK, id)
}

func (s *Server) handleBurnRate(w http.ResponseWriter, r *http.Request) {
	id, err := parseScenario(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req burnRateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.mutate("set_burn_rate", id.String(), req.Factor.String(), func() error {
		return s.an.SetBurnRate(id, req.Factor)
	}); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeScenario(w, http.StatusOK, id)
}

func (s *Server) writeScenario(w http.ResponseWriter, code int, id model.ScenarioID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := s.an.Scenario(id)
	writeJSON(w, code, scenarioDoc{
		ID:               id.String(),
		Active:           id == s.an.ActiveScenario(),
		MonthsUntilBroke: s.an.MonthsUntilBroke(id),
		ScenarioDoc:      snapshot.EncodeScenario(sc),
	})
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	id, err := model.ParseScenarioID(req.Scenario)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", common.ErrNotFound, err))
		return
	}
	if err := s.mutate("set_active", id.String(), "", func() error {
		return s.an.SetActiveScenario(id)
	}); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeScenario(w, http.StatusOK, id)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	_ = s.mutate("clear", "", "", func() error {
		s.an.Clear()
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := s.an.Export()
	data, err := snapshot.Marshal(st)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snapshot.DefaultFileName(st.Timestamp)))
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpload))
	if err != nil {
		s.writeError(w, common.Invalidf("reading snapshot: %v", err))
		return
	}
	st, err := snapshot.Unmarshal(data)
	if err != nil {
		s.writeError(w, err)
		return
	}

	err = s.mutate("import_snapshot", "", fmt.Sprintf("%d transactions", len(st.Transactions)), func() error {
		s.an.Import(st)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	doc := encodeSummary(s.an.Summary())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, doc)
}
