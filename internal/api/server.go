// Package api exposes a session analyzer over HTTP as JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/cashflow/internal/activity"
	"github.com/cleared-dev/cashflow/internal/analyzer"
	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/importer"
	"github.com/cleared-dev/cashflow/internal/logging"
	"github.com/cleared-dev/cashflow/internal/snapshot"
)

// maxUpload bounds statement and snapshot request bodies.
const maxUpload = 32 << 20

// Options configures a Server.
type Options struct {
	Registry *importer.Registry
	Recorder *activity.Recorder
	Logger   logrus.FieldLogger
	// Persist, when set, is called under the lock after every successful
	// mutation with the exported session state.
	Persist func(snapshot.State) error
}

// Server serialises HTTP access to one analyzer.
type Server struct {
	mu       sync.Mutex
	an       *analyzer.Analyzer
	registry *importer.Registry
	recorder *activity.Recorder
	persist  func(snapshot.State) error
	log      logrus.FieldLogger
	router   *mux.Router
}

// New builds a Server and its routes.
func New(an *analyzer.Analyzer, opts Options) *Server {
	s := &Server{
		an:       an,
		registry: opts.Registry,
		recorder: opts.Recorder,
		persist:  opts.Persist,
		log:      opts.Logger,
	}
	if s.registry == nil {
		s.registry = importer.DefaultRegistry()
	}
	if s.log == nil {
		s.log = logging.Discard()
	}

	r := mux.NewRouter()
	r.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	r.HandleFunc("/trends", s.handleTrends).Methods(http.MethodGet)
	r.HandleFunc("/transactions", s.handleTransactions).Methods(http.MethodGet)
	r.HandleFunc("/statement", s.handleStatement).Methods(http.MethodPost)

	r.HandleFunc("/actuals", s.handleListActuals).Methods(http.MethodGet)
	r.HandleFunc("/actuals/missing", s.handleMissing).Methods(http.MethodGet)
	r.HandleFunc("/actuals/{kind}", s.handleUpsertActual).Methods(http.MethodPost)
	r.HandleFunc("/actuals/{kind}/{year:[0-9]+}/{month:[0-9]+}", s.handleRemoveActual).Methods(http.MethodDelete)

	r.HandleFunc("/scenarios", s.handleScenarios).Methods(http.MethodGet)
	r.HandleFunc("/scenarios/{id}/projection", s.handleProjection).Methods(http.MethodGet)
	r.HandleFunc("/scenarios/{id}/incomes", s.handleAddIncome).Methods(http.MethodPost)
	r.HandleFunc("/scenarios/{id}/incomes", s.handleClearIncomes).Methods(http.MethodDelete)
	r.HandleFunc("/scenarios/{id}/incomes/{index:[0-9]+}", s.handleRemoveIncome).Methods(http.MethodDelete)
	r.HandleFunc("/scenarios/{id}/burn-rate", s.handleBurnRate).Methods(http.MethodPut)
	r.HandleFunc("/active-scenario", s.handleActive).Methods(http.MethodPut)

	r.HandleFunc("/clear", s.handleClear).Methods(http.MethodPost)
	r.HandleFunc("/snapshot", s.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/snapshot", s.handleImport).Methods(http.MethodPut)
	r.Use(s.logRequests)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Debug("request")
		next.ServeHTTP(w, r)
	})
}

// mutate runs fn under the lock, then persists and records the change.
func (s *Server) mutate(action, scenario, details string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	s.afterMutation(action, scenario, details)
	return nil
}

// afterMutation must be called with the lock held.
func (s *Server) afterMutation(action, scenario, details string) {
	if s.persist != nil {
		if err := s.persist(s.an.Export()); err != nil {
			s.log.WithError(err).Error("persisting session state")
		}
	}
	if err := s.recorder.Record(action, scenario, details, ""); err != nil {
		s.log.WithError(err).Warn("recording activity")
	}
}

// statusFor maps error sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrStaleLoad):
		return http.StatusConflict
	case errors.Is(err, common.ErrMissingColumns), errors.Is(err, common.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrParse), errors.Is(err, common.ErrInvalidFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeError reports err with the status its sentinel maps to. A UserError
// puts its message in error and the full cause chain in detail.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	body := errorBody{Error: err.Error()}
	var ue *common.UserError
	if errors.As(err, &ue) {
		body = errorBody{Error: ue.UserMessage, Detail: err.Error()}
	}
	if code == http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed")
	}
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return common.Invalidf("decoding request body: %v", err)
	}
	return nil
}
