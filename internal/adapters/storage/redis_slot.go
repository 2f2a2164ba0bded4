package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/reservenow/backend/internal/domain/repositories"
)

// maxUpdateAttempts bounds how often Update retries after losing a WATCH race
const maxUpdateAttempts = 10

// RedisSlot keeps the favorites slot under a single Redis key with no
// expiry. Updates run as WATCH/MULTI transactions, so API replicas sharing
// the key apply their changes on top of each other.
type RedisSlot struct {
	client redis.UniversalClient
	key    string
}

// NewRedisSlot creates a slot stored at key
func NewRedisSlot(client redis.UniversalClient, key string) *RedisSlot {
	return &RedisSlot{client: client, key: key}
}

// Load reads the slot
func (s *RedisSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repositories.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	return data, nil
}

// Save overwrites the slot
func (s *RedisSlot) Save(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, data, 0).Err()
}

// Update applies fn inside a WATCH on the key and retries when another
// writer changed it before EXEC
func (s *RedisSlot) Update(ctx context.Context, fn func(current []byte) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, s.key).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return fmt.Errorf("failed to read favorites: %w", err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, s.key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("favorites key %s kept changing after %d attempts", s.key, maxUpdateAttempts)
}

var _ repositories.FavoritesStorage = (*RedisSlot)(nil)
