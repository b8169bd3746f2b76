package templates

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

type FileStore struct {
	path   string
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", s.path, err)
	}
	return raw, nil
}

// Save writes through a temporary file and renames it over the template, so
// readers never see a partial file.
func (s *FileStore) Save(ctx context.Context, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".template-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temporary template: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write template: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace template: %w", err)
	}

	s.logger.Info("template replaced", "path", s.path, "bytes", len(raw))
	return nil
}
