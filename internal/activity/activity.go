// Package activity keeps an append-only CSV record of session changes made
// through the CLI and HTTP API.
package activity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultFile is the log file name used when none is configured.
const DefaultFile = "cashflow-activity.csv"

// Entry is one change to the session.
type Entry struct {
	Timestamp time.Time
	Source    string // "cli" or "api"
	Action    string
	Scenario  string
	Details   string
	RecordID  string // archive record id, when the action produced one
}

// column binds a CSV header to an Entry field.
type column struct {
	name string
	get  func(*Entry) string
	set  func(*Entry, string) error
}

func text(field func(*Entry) *string) (func(*Entry) string, func(*Entry, string) error) {
	return func(e *Entry) string { return *field(e) },
		func(e *Entry, v string) error { *field(e) = v; return nil }
}

var columns = func() []column {
	cols := []column{{
		name: "timestamp",
		get:  func(e *Entry) string { return e.Timestamp.UTC().Format(time.RFC3339) },
		set: func(e *Entry, v string) error {
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return fmt.Errorf("bad timestamp %q: %w", v, err)
			}
			e.Timestamp = ts
			return nil
		},
	}}
	for _, f := range []struct {
		name  string
		field func(*Entry) *string
	}{
		{"source", func(e *Entry) *string { return &e.Source }},
		{"action", func(e *Entry) *string { return &e.Action }},
		{"scenario", func(e *Entry) *string { return &e.Scenario }},
		{"details", func(e *Entry) *string { return &e.Details }},
		{"record_id", func(e *Entry) *string { return &e.RecordID }},
	} {
		get, set := text(f.field)
		cols = append(cols, column{name: f.name, get: get, set: set})
	}
	return cols
}()

// Header returns the CSV header row.
func Header() []string {
	h := make([]string, len(columns))
	for i, c := range columns {
		h[i] = c.name
	}
	return h
}

func (e Entry) row() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.get(&e)
	}
	return out
}

func parseRow(rec []string) (Entry, error) {
	var e Entry
	if len(rec) != len(columns) {
		return e, fmt.Errorf("want %d columns, have %d", len(columns), len(rec))
	}
	for i, c := range columns {
		if err := c.set(&e, rec[i]); err != nil {
			return e, fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return e, nil
}

// Log is the activity file at Path. The file and its directory are created
// on first write.
type Log struct {
	Path string
}

// Append adds entries to the end of the log.
func (l Log) Append(entries ...Entry) error {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return fmt.Errorf("activity log dir: %w", err)
	}

	fresh := false
	if _, err := os.Stat(l.Path); errors.Is(err, fs.ErrNotExist) {
		fresh = true
	}

	f, err := os.OpenFile(l.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open activity log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		_ = w.Write(Header())
	}
	for _, e := range entries {
		_ = w.Write(e.row())
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}

// Entries returns every entry in file order. A log never written to is empty.
func (l Log) Entries() ([]Entry, error) {
	f, err := os.Open(l.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open activity log: %w", err)
	}
	defer f.Close()
	return decode(f)
}

// Tail returns at most n of the latest entries, oldest first. n <= 0
// returns everything.
func (l Log) Tail(n int) ([]Entry, error) {
	all, err := l.Entries()
	if err != nil || n <= 0 || len(all) <= n {
		return all, err
	}
	return all[len(all)-n:], nil
}

func decode(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []Entry
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("activity log: %w", err)
		}
		if line == 1 {
			continue
		}
		e, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("activity log line %d: %w", line, err)
		}
		out = append(out, e)
	}
}

// Read is shorthand for Log{Path: path}.Entries().
func Read(path string) ([]Entry, error) {
	return Log{Path: path}.Entries()
}

// Recorder stamps entries from one source with a shared clock. A nil
// Recorder or one with an empty Path records nothing.
type Recorder struct {
	Path   string
	Source string
	Now    func() time.Time
}

// Record appends a single entry.
func (r *Recorder) Record(action, scenario, details, recordID string) error {
	if r == nil || r.Path == "" {
		return nil
	}
	clock := r.Now
	if clock == nil {
		clock = time.Now
	}
	return Log{Path: r.Path}.Append(Entry{
		Timestamp: clock(),
		Source:    r.Source,
		Action:    action,
		Scenario:  scenario,
		Details:   details,
		RecordID:  recordID,
	})
}
