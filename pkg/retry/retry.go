package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/menuflow/dashboard-gateway/pkg/logger"
)

// Config controls the retry loop.
type Config struct {
	MaxAttempts int
	Backoff     Backoff
	Logger      logger.Logger
	// Retryable decides whether a failure is worth another attempt. When nil
	// every error is retried.
	Retryable func(error) bool
}

// Do runs fn until it succeeds, the attempts are exhausted, a non-retryable
// error occurs, or the context is cancelled.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		if cfg.Retryable != nil && !cfg.Retryable(err) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("non-retryable error, giving up",
					"error", err,
					"attempt", attempt)
			}
			return err
		}

		delay := cfg.Backoff.Next(attempt)
		if cfg.Logger != nil {
			cfg.Logger.Debug("retrying after error",
				"error", err,
				"attempt", attempt,
				"max_attempts", cfg.MaxAttempts,
				"backoff", delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled during backoff: %w", ctx.Err())
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", cfg.MaxAttempts, lastErr)
}
