package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/reservenow/backend/internal/domain/repositories"
)

var slotNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// pathLocks serializes updates per file across every FileSlot in the process
var pathLocks sync.Map

// FileSlot stores the favorites slot as <dir>/<slot>.json. Updates are
// serialized within one process; the file is not locked against other
// processes.
type FileSlot struct {
	path string
	mu   *sync.Mutex
}

// NewFileSlot creates dir if needed and returns a slot inside it
func NewFileSlot(dir, slot string) (*FileSlot, error) {
	if !slotNamePattern.MatchString(slot) {
		return nil, fmt.Errorf("invalid slot name %q", slot)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create favorites dir: %w", err)
	}
	path := filepath.Join(dir, slot+".json")
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	mu, _ := pathLocks.LoadOrStore(path, &sync.Mutex{})
	return &FileSlot{path: path, mu: mu.(*sync.Mutex)}, nil
}

// Path returns the slot file location
func (s *FileSlot) Path() string {
	return s.path
}

// Load reads the slot file
func (s *FileSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, repositories.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	return data, nil
}

// Update reads the slot file, applies fn and writes the result back while
// holding the per-path lock
func (s *FileSlot) Update(ctx context.Context, fn func(current []byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Load(ctx)
	if err != nil && !errors.Is(err, repositories.ErrSlotEmpty) {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.write(next)
}

// Save replaces the slot file. The data is written to a temporary file in
// the same directory and renamed over the old one.
func (s *FileSlot) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(data)
}

func (s *FileSlot) write(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".favorites-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync favorites: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close favorites: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace favorites: %w", err)
	}
	return nil
}

var _ repositories.FavoritesStorage = (*FileSlot)(nil)
