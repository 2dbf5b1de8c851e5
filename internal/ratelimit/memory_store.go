package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps timestamps in process memory. Counters are not shared
// between replicas.
type MemoryStore struct {
	mu              sync.Mutex
	windows         map[string][]time.Time
	cleanupInterval time.Duration
	maxAge          time.Duration
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
}

type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often idle keys are swept.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.cleanupInterval = interval
		}
	}
}

// WithMaxAge sets the age after which a key's newest timestamp makes the
// key eligible for sweeping. It should be at least the limiter window.
func WithMaxAge(age time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if age > 0 {
			s.maxAge = age
		}
	}
}

// NewMemoryStore creates a store and starts its cleanup goroutine; call
// Close to stop it.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		windows:         make(map[string][]time.Time),
		cleanupInterval: time.Minute,
		maxAge:          time.Hour,
		stopCleanup:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.cleanupLoop()
	return s
}

func (s *MemoryStore) RecordIfAllowed(_ context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := prune(s.windows[key], now, window)
	allowed := len(ts) < limit
	if allowed {
		ts = append(ts, now)
	}
	s.windows[key] = ts

	var oldest time.Time
	if len(ts) > 0 {
		oldest = ts[0]
	}
	return allowed, len(ts), oldest, nil
}

// prune keeps timestamps younger than window; ts is in ascending order.
func prune(ts []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(ts) && now.Sub(ts[i]) >= window {
		i++
	}
	return ts[i:]
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.stopCleanup:
			return
		}
	}
}

// cleanup removes keys whose newest timestamp is older than maxAge.
func (s *MemoryStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, ts := range s.windows {
		if len(ts) == 0 || now.Sub(ts[len(ts)-1]) >= s.maxAge {
			delete(s.windows, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}
