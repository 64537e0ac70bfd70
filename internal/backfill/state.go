package backfill

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// DefaultStatePath is where import progress is kept unless configured.
const DefaultStatePath = "~/.aktivasi/import-state.json"

// ImportState tracks progress for resumable import runs.
type ImportState struct {
	StartedAt       time.Time `json:"started_at"`
	LastProcessedAt time.Time `json:"last_processed_at"`
	FilesProcessed  []string  `json:"files_processed"`
	FilesRemaining  int       `json:"files_remaining"`
	Imported        int       `json:"imported"`
	Duplicates      int       `json:"duplicates"`
	Invalid         int       `json:"invalid"`
	Errors          []string  `json:"errors"`

	path string // not serialized; empty keeps state in memory only
}

// LoadState loads the import state at path, or creates a new one. An empty
// path yields an in-memory state.
func LoadState(path string) (*ImportState, error) {
	if path == "" {
		return &ImportState{StartedAt: time.Now().UTC()}, nil
	}
	p := expandHome(path)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &ImportState{
				StartedAt: time.Now().UTC(),
				path:      p,
			}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s ImportState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = p
	return &s, nil
}

// Save persists the state to disk.
func (s *ImportState) Save() error {
	s.LastProcessedAt = time.Now().UTC()
	if s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

// IsProcessed returns true if the given file has already been processed.
func (s *ImportState) IsProcessed(path string) bool {
	return slices.Contains(s.FilesProcessed, path)
}

// MarkProcessed records a file as processed.
func (s *ImportState) MarkProcessed(path string) {
	s.FilesProcessed = append(s.FilesProcessed, path)
}

// AddError records a processing error.
func (s *ImportState) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
