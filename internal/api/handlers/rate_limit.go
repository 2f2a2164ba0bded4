package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/reservenow/backend/internal/domain/providers"
	"github.com/reservenow/backend/internal/infrastructure/observability"
)

// submissionLimiter allows limit submissions per key inside a fixed window.
// A slot is taken before the submission runs and handed back if it fails,
// so concurrent requests cannot overshoot the limit. The shared counter is
// used when present so every replica sees the same counts; otherwise, or
// when the counter errors, an in-process map is used.
type submissionLimiter struct {
	counter providers.RateCounter
	local   *localRateLimiter
	limit   int
	window  time.Duration
}

func newSubmissionLimiter(counter providers.RateCounter, limit int, window time.Duration) *submissionLimiter {
	return &submissionLimiter{
		counter: counter,
		local:   newLocalRateLimiter(),
		limit:   limit,
		window:  window,
	}
}

// reserve takes one slot for key. When the window is full it returns false
// and the time until the window resets. release gives the slot back.
func (l *submissionLimiter) reserve(ctx context.Context, key string) (release func(), retryAfter time.Duration, ok bool) {
	if l.counter == nil {
		return l.local.reserve(key, l.limit, l.window)
	}

	count, ttl, err := l.counter.Increment(ctx, key, l.window)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("rate counter unavailable, limiting in process")
		return l.local.reserve(key, l.limit, l.window)
	}

	release = func() {
		if err := l.counter.Decrement(context.WithoutCancel(ctx), key); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to release rate limit slot")
		}
	}

	if count > int64(l.limit) {
		release()
		if ttl <= 0 {
			ttl = l.window
		}
		return nil, ttl, false
	}
	return release, 0, true
}

type localRateLimiter struct {
	mu     sync.Mutex
	states map[string]*localRateState
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
	}
}

func (l *localRateLimiter) reserve(key string, limit int, window time.Duration) (func(), time.Duration, bool) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{resetAt: now.Add(window)}
		l.states[key] = state
	}
	if state.count >= limit {
		return nil, state.resetAt.Sub(now), false
	}
	state.count++

	return func() { l.release(key, state) }, 0, true
}

// release only touches the window the slot was taken from
func (l *localRateLimiter) release(key string, state *localRateState) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.states[key] == state && state.count > 0 {
		state.count--
	}
}
