package services

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"

	"github.com/reservenow/backend/internal/domain/repositories"
	"github.com/reservenow/backend/internal/infrastructure/observability"
	apperrors "github.com/reservenow/backend/pkg/errors"
)

var errFavoritesUnchanged = errors.New("favorites unchanged")

// FavoritesService owns the favorite restaurant ids and the storage slot
// they persist to. Mutations are applied to the slot's current contents
// inside a storage update, so services sharing a slot never drop each
// other's changes. The in-memory set only changes after the slot accepted
// the write.
type FavoritesService struct {
	mu      sync.Mutex
	storage repositories.FavoritesStorage
	ids     map[string]struct{}
}

// NewFavoritesService hydrates the set from storage. Missing or unreadable
// data yields an empty set.
func NewFavoritesService(ctx context.Context, storage repositories.FavoritesStorage) *FavoritesService {
	s := &FavoritesService{
		storage: storage,
		ids:     make(map[string]struct{}),
	}
	s.Refresh(ctx)
	return s
}

// Refresh reloads the set from storage, picking up writes made through
// other services on the same slot. A read failure keeps the current set.
func (s *FavoritesService) Refresh(ctx context.Context) {
	logger := observability.LoggerFromContext(ctx)

	data, err := s.storage.Load(ctx)
	if err != nil {
		if !errors.Is(err, repositories.ErrSlotEmpty) {
			logger.Warn().Err(err).Msg("favorites unreadable, keeping current set")
			return
		}
		data = nil
	}

	ids := decodeFavorites(ctx, data)

	s.mu.Lock()
	s.ids = ids
	s.mu.Unlock()
}

// IsFavorite reports whether id is a favorite
func (s *FavoritesService) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// IDs returns the favorite ids, sorted
func (s *FavoritesService) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedFavorites(s.ids)
}

// Set returns a copy of the favorite ids
func (s *FavoritesService) Set() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		out[id] = struct{}{}
	}
	return out
}

// Add marks id as a favorite. Adding an existing favorite is a no-op.
func (s *FavoritesService) Add(ctx context.Context, id string) error {
	return s.mutate(ctx, func(ids map[string]struct{}) bool {
		if _, ok := ids[id]; ok {
			return false
		}
		ids[id] = struct{}{}
		return true
	})
}

// Remove unmarks id. Removing a non-favorite is a no-op.
func (s *FavoritesService) Remove(ctx context.Context, id string) error {
	return s.mutate(ctx, func(ids map[string]struct{}) bool {
		if _, ok := ids[id]; !ok {
			return false
		}
		delete(ids, id)
		return true
	})
}

// Toggle flips id and returns whether it is now a favorite. On failure the
// returned state is the unchanged one.
func (s *FavoritesService) Toggle(ctx context.Context, id string) (bool, error) {
	var favorite bool
	err := s.mutate(ctx, func(ids map[string]struct{}) bool {
		_, ok := ids[id]
		if ok {
			delete(ids, id)
		} else {
			ids[id] = struct{}{}
		}
		favorite = !ok
		return true
	})
	if err != nil {
		return s.IsFavorite(id), err
	}
	return favorite, nil
}

// Clear removes every favorite
func (s *FavoritesService) Clear(ctx context.Context) error {
	return s.mutate(ctx, func(ids map[string]struct{}) bool {
		if len(ids) == 0 {
			return false
		}
		clear(ids)
		return true
	})
}

// mutate applies change to the slot's current set. change reports whether
// it modified the set; unchanged sets are not written back.
func (s *FavoritesService) mutate(ctx context.Context, change func(ids map[string]struct{}) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next map[string]struct{}
	err := s.storage.Update(ctx, func(current []byte) ([]byte, error) {
		next = decodeFavorites(ctx, current)
		if !change(next) {
			return nil, errFavoritesUnchanged
		}
		return json.Marshal(sortedFavorites(next))
	})
	if err != nil && !errors.Is(err, errFavoritesUnchanged) {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("failed to persist favorites")
		return apperrors.NewInternalError("failed to save favorites", err)
	}

	s.ids = next
	return nil
}

func decodeFavorites(ctx context.Context, data []byte) map[string]struct{} {
	ids := make(map[string]struct{})
	if data == nil {
		return ids
	}

	var stored []string
	if err := json.Unmarshal(data, &stored); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("favorites corrupt, treating as empty")
		return ids
	}
	for _, id := range stored {
		ids[id] = struct{}{}
	}
	return ids
}

func sortedFavorites(ids map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
