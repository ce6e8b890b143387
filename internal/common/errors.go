// Package common holds the error taxonomy shared by the analysis packages.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Ingestion, mutation and snapshot errors. Callers match with errors.Is.
var (
	ErrParse          = errors.New("malformed statement file")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoData         = errors.New("no valid transactions")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrInvalidFormat  = errors.New("invalid snapshot format")
	ErrStaleLoad      = errors.New("superseded by a newer load")
)

// MissingColumnsError reports the headers seen when date, amount or balance
// columns could not be identified.
type MissingColumnsError struct {
	Headers []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s (date, amount, balance); headers: %s",
		ErrMissingColumns, strings.Join(e.Headers, ", "))
}

// Is makes errors.Is(err, ErrMissingColumns) hold.
func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}

// UserError carries a message meant for the person running the tool.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with a human-readable message.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// Invalidf returns an ErrInvalidInput wrapped with detail.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
