// Package patterns persists the learned match-pattern log as a JSON file.
package patterns

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sai-aps/quotematch/internal/domain"
)

// FileStore keeps the pattern log in a single JSON file. The log is small and
// rewritten wholesale on every update, so one mutex serializes all access;
// writes go through a temp file plus rename to stay atomic on crash.
type FileStore struct {
	path  string
	mutex sync.Mutex
}

// NewFileStore creates a file-backed pattern store at the given path. The
// parent directory is created if missing.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPatternStoreUnavailable, err)
		}
	}
	return &FileStore{path: path}, nil
}

// Load reads the full pattern log. A missing file is an empty log.
func (s *FileStore) Load(ctx context.Context) ([]domain.MemoryPattern, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.read()
}

// Update applies fn to the current log and writes the result back, all under
// the store lock so concurrent read-modify-write cycles never interleave.
func (s *FileStore) Update(ctx context.Context, fn func([]domain.MemoryPattern) []domain.MemoryPattern) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	patterns, err := s.read()
	if err != nil {
		return err
	}

	return s.write(fn(patterns))
}

func (s *FileStore) read() ([]domain.MemoryPattern, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPatternStoreUnavailable, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var patterns []domain.MemoryPattern
	if err := json.Unmarshal(data, &patterns); err != nil {
		return nil, fmt.Errorf("%w: corrupt pattern file: %v", domain.ErrPatternStoreUnavailable, err)
	}
	return patterns, nil
}

func (s *FileStore) write(patterns []domain.MemoryPattern) error {
	data, err := json.MarshalIndent(patterns, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPatternStoreUnavailable, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPatternStoreUnavailable, err)
	}
	return nil
}
