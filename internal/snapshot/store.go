package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/cashflow/internal/common"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Record is one archived snapshot document.
type Record struct {
	ID        string
	Label     string
	CreatedAt time.Time
	Size      int
}

// Store archives snapshot documents in a SQLite database. The documents are
// stored opaquely; nothing else about the session is persisted.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens (creating if needed) the archive at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, common.Invalidf("archive path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping archive: %w", err)
	}

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put archives a document under label.
func (s *Store) Put(ctx context.Context, label string, doc []byte) (Record, error) {
	if len(doc) == 0 {
		return Record{}, common.Invalidf("empty snapshot document")
	}
	rec := Record{
		ID:        uuid.NewString(),
		Label:     label,
		CreatedAt: s.now().UTC(),
		Size:      len(doc),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, label, created_at, document) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Label, rec.CreatedAt, doc)
	if err != nil {
		return Record{}, fmt.Errorf("failed to archive snapshot: %w", err)
	}
	return rec, nil
}

// List returns archived records, newest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, created_at, length(document) FROM snapshots ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Label, &r.CreatedAt, &r.Size); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns the record and document stored under id.
func (s *Store) Get(ctx context.Context, id string) (Record, []byte, error) {
	var r Record
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, label, created_at, document FROM snapshots WHERE id = ?`, id).
		Scan(&r.ID, &r.Label, &r.CreatedAt, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, nil, fmt.Errorf("%w: snapshot %s", common.ErrNotFound, id)
	}
	if err != nil {
		return Record{}, nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	r.Size = len(doc)
	return r, doc, nil
}
