package ingest

import (
	"context"
	"time"
)

// maxBackoff caps the doubling so a long RPC outage cannot push the wait
// into the minutes.
const maxBackoff = 30 * time.Second

func withRetry(ctx context.Context, attempts int, backoff time.Duration, fn func(context.Context) error) error {
	if attempts < 0 {
		attempts = 0
	}
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	var err error
	for try := 0; try <= attempts; try++ {
		if try > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
	}
	return err
}
