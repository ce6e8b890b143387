package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
)

// Save writes state to path as JSON, creating parent directories.
func Save(path string, st State) error {
	data, err := Marshal(st)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot file written by Save or by the browser export.
func Load(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("reading snapshot: %w", err)
	}
	return Unmarshal(data)
}
