package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reservenow/backend/internal/domain/providers"
	redisclient "github.com/reservenow/backend/internal/infrastructure/clients/redis"
)

// RedisAdapter implements CacheProvider and RateCounter using Redis
type RedisAdapter struct {
	client redis.Cmdable
}

// NewRedisAdapter creates a new Redis cache adapter
func NewRedisAdapter(client *redisclient.Client) *RedisAdapter {
	return &RedisAdapter{
		client: client.Client(),
	}
}

// NewRedisAdapterFromCmdable wraps any go-redis command client
func NewRedisAdapterFromCmdable(client redis.Cmdable) *RedisAdapter {
	return &RedisAdapter{client: client}
}

// Get retrieves a value from cache
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := a.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}
	return result, nil
}

// Set stores a value in cache with expiration
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	var expiration time.Duration
	if expirationSeconds > 0 {
		expiration = time.Duration(expirationSeconds) * time.Second
	}
	if err := a.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}
	return nil
}

// Delete removes a value from cache
func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := a.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	return nil
}

// Exists checks if a key exists in cache
func (a *RedisAdapter) Exists(ctx context.Context, key string) (bool, error) {
	result, err := a.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence in cache: %w", err)
	}
	return result > 0, nil
}

// Increment creates key at zero with the window as expiry when absent, then
// increments it, all inside one MULTI block
func (a *RedisAdapter) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := a.client.TxPipeline()
	pipe.SetNX(ctx, key, 0, window)
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	return incr.Val(), ttl.Val(), nil
}

// Decrement lowers key by one. A counter that reaches zero, or that expired
// in the meantime, is removed so it never lingers without a TTL.
func (a *RedisAdapter) Decrement(ctx context.Context, key string) error {
	n, err := a.client.Decr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to decrement counter: %w", err)
	}
	if n <= 0 {
		if err := a.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete counter: %w", err)
		}
	}
	return nil
}

var (
	_ providers.CacheProvider = (*RedisAdapter)(nil)
	_ providers.RateCounter   = (*RedisAdapter)(nil)
)
