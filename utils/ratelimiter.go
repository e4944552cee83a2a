package utils

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces out requests to the same site
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a new RateLimiter with the given delay in milliseconds.
// A delay of zero or less disables limiting.
func NewRateLimiter(delayMs int) *RateLimiter {
	limit := rate.Inf
	if delayMs > 0 {
		limit = rate.Every(time.Duration(delayMs) * time.Millisecond)
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next request may go out or ctx is done
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
