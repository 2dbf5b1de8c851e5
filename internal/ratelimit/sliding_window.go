// Package ratelimit implements a sliding-window request limiter with
// pluggable storage (in-process memory or Redis).
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidLimit    = errors.New("invalid limit")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrKeyRequired     = errors.New("key is required")
	ErrStoreRequired   = errors.New("store is required")
)

// Result contains the result of a rate limit check.
type Result struct {
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests still allowed in the window.
	Remaining int

	// ResetAt is when the oldest counted request leaves the window.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store keeps per-key request timestamps.
type Store interface {
	// RecordIfAllowed drops timestamps that are at least window old, then
	// records now if fewer than limit remain. It reports whether now was
	// recorded, the count in the window afterwards, and the oldest
	// timestamp still in the window.
	RecordIfAllowed(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (allowed bool, count int, oldest time.Time, err error)

	Close() error
}

// SlidingWindow allows at most limit requests per key in any trailing
// window.
type SlidingWindow struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindow(store Store, limit int, window time.Duration) (*SlidingWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidInterval
	}

	return &SlidingWindow{
		store:  store,
		limit:  limit,
		window: window,
		now:    time.Now,
	}, nil
}

// Allow checks and, when allowed, consumes one slot for key.
func (sw *SlidingWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	now := sw.now()
	allowed, count, oldest, err := sw.store.RecordIfAllowed(ctx, key, now, sw.window, sw.limit)
	if err != nil {
		return nil, err
	}
	if oldest.IsZero() {
		oldest = now
	}

	return &Result{
		Allowed:   allowed,
		Limit:     sw.limit,
		Remaining: max(0, sw.limit-count),
		ResetAt:   oldest.Add(sw.window),
	}, nil
}

func (sw *SlidingWindow) Limit() int { return sw.limit }

func (sw *SlidingWindow) Window() time.Duration { return sw.window }
