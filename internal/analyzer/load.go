package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/importer"
	"github.com/cleared-dev/cashflow/internal/ledger"
	"github.com/cleared-dev/cashflow/internal/trends"
)

// Token identifies a load. Only the most recently issued token may commit.
type Token uint64

// BeginLoad issues a new load token, superseding any load in flight.
func (a *Analyzer) BeginLoad() Token {
	a.latest++
	return a.latest
}

// ParseStatement decodes and builds a ledger without touching session state,
// so it may run outside whatever lock guards the analyzer.
func (a *Analyzer) ParseStatement(r io.Reader, parser importer.Parser) (*ledger.Ledger, error) {
	table, err := parser.Parse(r)
	if err != nil {
		return nil, explainLoadError(err)
	}
	l, err := ledger.Build(table, ledger.Options{
		NormalizeYears: a.opts.NormalizeYears,
		Now:            a.opts.Now,
	})
	if err != nil {
		return nil, explainLoadError(err)
	}
	return l, nil
}

// explainLoadError attaches a message for the person who supplied the file.
// The cause stays reachable with errors.Is.
func explainLoadError(err error) error {
	switch {
	case errors.Is(err, common.ErrMissingColumns):
		return common.NewUserError("the statement needs date, amount and balance columns", err)
	case errors.Is(err, common.ErrNoData):
		return common.NewUserError("the statement has no usable transactions", err)
	case errors.Is(err, common.ErrParse):
		return common.NewUserError("the statement file could not be read", err)
	}
	return err
}

// CommitLoad installs l as the session ledger if tok is still the latest
// token, then re-runs trend analysis and all projections. Actual figures and
// scenario settings are kept.
func (a *Analyzer) CommitLoad(tok Token, l *ledger.Ledger) error {
	if tok != a.latest {
		return fmt.Errorf("%w: load %d, latest %d", common.ErrStaleLoad, tok, a.latest)
	}
	if l == nil || len(l.Transactions) == 0 {
		return fmt.Errorf("%w: empty ledger", common.ErrNoData)
	}

	a.transactions = l.Transactions
	a.balance = l.Balance
	a.warnings = LoadWarnings{
		DroppedRows:   l.DroppedRows,
		DateFallbacks: l.DateFallbacks,
		YearsShifted:  l.YearsShifted,
	}
	a.analyze()
	a.ProjectAll()

	entry := a.log.WithFields(logrus.Fields{
		"transactions": len(l.Transactions),
		"balance":      l.Balance.StringFixed(2),
		"dropped_rows": l.DroppedRows,
	})
	if l.DateFallbacks > 0 {
		entry.WithField("date_fallbacks", l.DateFallbacks).
			Warn("some dates could not be parsed and were set to today")
	}
	entry.Info("statement loaded")
	return nil
}

// LoadStatement parses r and commits it as the session ledger. A failed or
// superseded load leaves the session unchanged.
func (a *Analyzer) LoadStatement(ctx context.Context, r io.Reader, parser importer.Parser) error {
	tok := a.BeginLoad()
	l, err := a.ParseStatement(r, parser)
	if err != nil {
		a.log.WithError(err).Warn("statement load failed")
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.CommitLoad(tok, l)
}

func (a *Analyzer) analyze() {
	a.trends = trends.Analyze(a.transactions)
	if a.trends == nil {
		a.seasonal = nil
		return
	}
	p := trends.Seasonal(a.trends)
	a.seasonal = &p
}
