package repositories

import (
	"context"
	"errors"
)

// ErrSlotEmpty is returned by Load when nothing has been saved yet
var ErrSlotEmpty = errors.New("favorites slot is empty")

// FavoritesStorage is a single named slot holding the serialized favorites.
// Several processes may share one slot, so writes go through Update.
type FavoritesStorage interface {
	Load(ctx context.Context) ([]byte, error)

	// Update reads the slot, passes the current bytes (nil when empty) to fn
	// and stores what fn returns. No other Update on the same slot lands
	// between the read and the write. An error from fn aborts the update
	// and is returned unchanged. fn may run more than once.
	Update(ctx context.Context, fn func(current []byte) ([]byte, error)) error
}
