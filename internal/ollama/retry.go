package ollama

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Policy bounds retries against the summarization service: how many
// attempts and the fixed delay between them.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// IsRetryable reports whether err is a transient service failure.
// Connection refusals and other hard transport errors are final.
func IsRetryable(err error) bool {
	var rerr *RetryableError
	return errors.As(err, &rerr)
}

// Do runs fn up to MaxAttempts times, sleeping Delay between retryable
// failures. The last error is returned when attempts are exhausted;
// non-retryable errors return immediately.
func (p Policy) Do(ctx context.Context, log *slog.Logger, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt == attempts {
			return err
		}
		log.Warn("retrying after transient failure",
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", p.Delay,
			"error", err)
		if p.Delay > 0 {
			timer := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return err
			case <-timer.C:
			}
		}
	}
	return err
}
