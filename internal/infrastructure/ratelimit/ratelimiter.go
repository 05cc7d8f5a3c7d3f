package ratelimit

import (
	"context"
	"time"
)

// Policy caps requests per identifier across one or more windows. A zero limit disables that window.
type Policy struct {
	RequestsPerMinute int
	RequestsPerHour   int
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, policy Policy) (bool, error)
	// Count returns how many requests are recorded for key in the window.
	Count(ctx context.Context, key string, window time.Duration) (int64, error)
}
