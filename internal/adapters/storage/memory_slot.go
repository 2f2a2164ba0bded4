package storage

import (
	"bytes"
	"context"
	"sync"

	"github.com/reservenow/backend/internal/domain/repositories"
)

// MemorySlot keeps the slot in process memory
type MemorySlot struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemorySlot creates an empty slot
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Load returns a copy of the stored bytes
func (s *MemorySlot) Load(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, repositories.ErrSlotEmpty
	}
	return bytes.Clone(s.data), nil
}

// Save stores a copy of data
func (s *MemorySlot) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeLocked(data)
	return nil
}

// Update runs fn on the stored bytes under the slot lock
func (s *MemorySlot) Update(ctx context.Context, fn func(current []byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(bytes.Clone(s.data))
	if err != nil {
		return err
	}
	s.storeLocked(next)
	return nil
}

func (s *MemorySlot) storeLocked(data []byte) {
	s.data = bytes.Clone(data)
	if s.data == nil {
		s.data = []byte{}
	}
}

var _ repositories.FavoritesStorage = (*MemorySlot)(nil)
