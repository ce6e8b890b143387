// Package importer decodes bank statement exports into header-addressed rows.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/normalize"
)

// DelimitedParser reads header-first delimited text, decoding Greek
// single-byte encodings along the way.
type DelimitedParser struct {
	Name  string
	Comma rune
}

// NewSemicolonParser returns the parser for the usual Greek bank export.
func NewSemicolonParser() *DelimitedParser {
	return &DelimitedParser{Name: "semicolon", Comma: ';'}
}

// Format returns the parser name.
func (p *DelimitedParser) Format() string { return p.Name }

// Parse reads the whole statement. An empty input yields ErrNoData.
func (p *DelimitedParser) Parse(r io.Reader) (*RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading statement: %v", common.ErrParse, err)
	}

	text := normalize.DecodeGreek(data)
	text = strings.TrimPrefix(text, "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = p.Comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrParse, err)
		}
		if isBlank(rec) {
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: statement is empty", common.ErrNoData)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return &RawTable{Headers: headers, Rows: records[1:]}, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Cell returns row[i] trimmed, or "" when the row is short.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
