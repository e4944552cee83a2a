package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrPermanent marks an error that retrying cannot fix.
var ErrPermanent = errors.New("permanent failure")

// Permanent wraps err so RetryWithBackoff returns it immediately.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// RetryWithBackoff retries fn up to maxRetries times with quadratic backoff
// (1s, 4s, 9s, ...). Errors wrapping ErrPermanent are not retried.
func RetryWithBackoff(ctx context.Context, maxRetries int, fn func() error, logger *Logger) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			logger.Warn("Retrying (attempt %d/%d) after %v...", attempt+1, maxRetries, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrPermanent) {
			return err
		}
		lastErr = err
		logger.Debug("Attempt %d failed: %v", attempt+1, err)
	}
	if maxRetries == 1 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed, last error: %w", maxRetries, lastErr)
}
