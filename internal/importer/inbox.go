package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ProcessedDir is the inbox subdirectory holding statements already loaded.
const ProcessedDir = "processed"

// Statement is a pending export waiting in the inbox.
type Statement struct {
	Name     string
	Path     string
	Size     int64
	Modified time.Time
}

// Inbox is a drop directory for statement exports. Loaded files are moved
// into its processed/ subdirectory so they are not picked up again.
type Inbox struct {
	Dir string
}

// Pending lists statement files directly under the inbox, newest first.
// Files with the same modification time are ordered by name, descending,
// so dated names like 2025-03.csv sort the way a user expects. A missing
// inbox holds nothing.
func (in Inbox) Pending() ([]Statement, error) {
	entries, err := os.ReadDir(in.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing inbox %s: %w", in.Dir, err)
	}

	var out []Statement
	for _, e := range entries {
		if !e.Type().IsRegular() || !looksLikeStatement(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("inspecting %s: %w", e.Name(), err)
		}
		out = append(out, Statement{
			Name:     e.Name(),
			Path:     filepath.Join(in.Dir, e.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Modified.Equal(out[j].Modified) {
			return out[i].Modified.After(out[j].Modified)
		}
		return out[i].Name > out[j].Name
	})
	return out, nil
}

// Newest returns the most recent pending statement and whether there was one.
func (in Inbox) Newest() (Statement, bool, error) {
	pending, err := in.Pending()
	if err != nil || len(pending) == 0 {
		return Statement{}, false, err
	}
	return pending[0], true, nil
}

// Archive moves a loaded statement into processed/. When a file of the same
// name was archived before, the new one gets a numeric suffix instead of
// replacing it. It returns the archived path.
func (in Inbox) Archive(name string) (string, error) {
	doneDir := filepath.Join(in.Dir, ProcessedDir)
	if err := os.MkdirAll(doneDir, 0o755); err != nil {
		return "", fmt.Errorf("preparing %s: %w", doneDir, err)
	}

	dst := freeName(doneDir, name)
	if err := os.Rename(filepath.Join(in.Dir, name), dst); err != nil {
		return "", fmt.Errorf("archiving %s: %w", name, err)
	}
	return dst, nil
}

func freeName(dir, name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := filepath.Join(dir, name)
	for n := 1; exists(candidate); n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s.%d%s", stem, n, ext))
	}
	return candidate
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func looksLikeStatement(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return true
	}
	return false
}
