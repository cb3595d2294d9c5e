package store

import (
	"context"
	"sync"
	"time"
)

// RateLimitMemoryStore keeps sliding windows in process memory.
type RateLimitMemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	// Timestamps are appended in order, so everything before the first live entry is stale.
	hits := s.windows[key]
	first := 0

	for first < len(hits) && !hits[first].After(cutoff) {
		first++
	}

	hits = append(hits[first:], now)
	s.windows[key] = hits

	return int64(len(hits)), nil
}

// Prune drops keys with no request newer than maxWindow.
func (s *RateLimitMemoryStore) Prune(maxWindow time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxWindow)

	for key, hits := range s.windows {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(s.windows, key)
		}
	}
}

// Keys returns the number of tracked keys.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.windows)
}
