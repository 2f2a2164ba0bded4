package storage_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservenow/backend/internal/adapters/storage"
	"github.com/reservenow/backend/internal/application/services"
	"github.com/reservenow/backend/internal/domain/repositories"
)

func TestFileSlot(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")

	slot, err := storage.NewFileSlot(dir, "reservenow_favorites")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reservenow_favorites.json"), slot.Path())

	_, err = slot.Load(ctx)
	assert.ErrorIs(t, err, repositories.ErrSlotEmpty)

	require.NoError(t, slot.Save(ctx, []byte(`["a"]`)))
	require.NoError(t, slot.Save(ctx, []byte(`["a","b"]`)))

	data, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestFileSlot_InvalidName(t *testing.T) {
	_, err := storage.NewFileSlot(t.TempDir(), "../escape")
	assert.Error(t, err)
}

func TestFileSlot_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := storage.NewFileSlot(dir, "reservenow_favorites")
	require.NoError(t, err)
	favorites := services.NewFavoritesService(ctx, first)
	require.NoError(t, favorites.Add(ctx, "sushi-zen"))
	require.NoError(t, favorites.Add(ctx, "nasi-kandar-corner"))

	second, err := storage.NewFileSlot(dir, "reservenow_favorites")
	require.NoError(t, err)
	reloaded := services.NewFavoritesService(ctx, second)
	assert.Equal(t, []string{"nasi-kandar-corner", "sushi-zen"}, reloaded.IDs())
}

func newRedisSlot(t *testing.T, key string) (*storage.RedisSlot, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return storage.NewRedisSlot(client, key), server
}

func TestRedisSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key means empty", func(t *testing.T) {
		slot, _ := newRedisSlot(t, "favorites:reservenow_favorites")
		_, err := slot.Load(ctx)
		assert.ErrorIs(t, err, repositories.ErrSlotEmpty)
	})

	t.Run("save has no expiry", func(t *testing.T) {
		slot, server := newRedisSlot(t, "favorites:k")
		require.NoError(t, slot.Save(ctx, []byte(`["a"]`)))

		data, err := slot.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, `["a"]`, string(data))
		assert.Zero(t, server.TTL("favorites:k"))
	})

	t.Run("update sees current value", func(t *testing.T) {
		slot, server := newRedisSlot(t, "favorites:k")
		require.NoError(t, server.Set("favorites:k", `["a"]`))

		require.NoError(t, slot.Update(ctx, func(current []byte) ([]byte, error) {
			assert.Equal(t, `["a"]`, string(current))
			return []byte(`["a","b"]`), nil
		}))

		got, err := server.Get("favorites:k")
		require.NoError(t, err)
		assert.Equal(t, `["a","b"]`, got)
	})

	t.Run("update error leaves key untouched", func(t *testing.T) {
		slot, server := newRedisSlot(t, "favorites:k")
		require.NoError(t, server.Set("favorites:k", `["a"]`))
		boom := errors.New("rejected")

		err := slot.Update(ctx, func(current []byte) ([]byte, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)

		got, _ := server.Get("favorites:k")
		assert.Equal(t, `["a"]`, got)
	})

	t.Run("read errors pass through", func(t *testing.T) {
		slot, server := newRedisSlot(t, "favorites:k")
		server.SetError("LOADING")

		_, err := slot.Load(ctx)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, repositories.ErrSlotEmpty)
	})
}

func TestRedisSlot_ReplicasShareFavorites(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)

	newReplica := func() *services.FavoritesService {
		client := redis.NewClient(&redis.Options{Addr: server.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return services.NewFavoritesService(ctx, storage.NewRedisSlot(client, "favorites:shared"))
	}
	a, b := newReplica(), newReplica()

	require.NoError(t, a.Add(ctx, "x"))
	require.NoError(t, b.Add(ctx, "y"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		svc := a
		if i%2 == 1 {
			svc = b
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, svc.Add(ctx, id))
		}(fmt.Sprintf("r%d", i))
	}
	wg.Wait()

	a.Refresh(ctx)
	assert.Len(t, a.IDs(), 12)
	assert.True(t, a.IsFavorite("y"))
}

func TestFileSlot_SharedPathKeepsBothWrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := storage.NewFileSlot(dir, "reservenow_favorites")
	require.NoError(t, err)
	second, err := storage.NewFileSlot(dir, "reservenow_favorites")
	require.NoError(t, err)

	a := services.NewFavoritesService(ctx, first)
	b := services.NewFavoritesService(ctx, second)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		svc := a
		if i%2 == 1 {
			svc = b
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, svc.Add(ctx, id))
		}(fmt.Sprintf("r%d", i))
	}
	wg.Wait()

	b.Refresh(ctx)
	assert.Len(t, b.IDs(), 10)
}

func TestMemorySlot(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()

	_, err := slot.Load(ctx)
	assert.ErrorIs(t, err, repositories.ErrSlotEmpty)

	payload := []byte(`[]`)
	require.NoError(t, slot.Save(ctx, payload))
	payload[0] = 'x'

	data, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestMemorySlot_Update(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()

	require.NoError(t, slot.Update(ctx, func(current []byte) ([]byte, error) {
		assert.Nil(t, current)
		return []byte(`["a"]`), nil
	}))

	boom := errors.New("rejected")
	assert.ErrorIs(t, slot.Update(ctx, func([]byte) ([]byte, error) { return nil, boom }), boom)

	data, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(data))
}
