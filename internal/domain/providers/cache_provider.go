package providers

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value, wrapping ErrCacheMiss when the key is absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A non-positive expiration keeps the key until deleted.
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}

// RateCounter keeps fixed-window counters visible to every process
type RateCounter interface {
	// Increment adds one to key and returns the new count and the time left
	// in its window. The first increment starts a window of the given length.
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

	// Decrement takes back one increment
	Decrement(ctx context.Context, key string) error
}
