package ratelimit

import (
	"context"
	"time"
)

// Store keeps per-key request timestamps for sliding windows.
type Store interface {
	// Record adds a request under key, drops entries older than window and returns the
	// number of requests left in the window, this one included.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
