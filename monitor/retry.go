package monitor

import (
	"context"
	"fmt"
	"time"

	"snoop"
)

// Retrier re-runs an operation up to Attempts times with a fixed pause
// between tries. Each failed attempt is announced so retries show up in
// the trace next to the work they repeat.
type Retrier struct {
	Attempts int           // total tries; values below 1 behave as 1
	Backoff  time.Duration // pause between tries
	Prefix   string        // announce prefix (default "RETRY")
	Sink     snoop.Sink    // announce destination; nil means the process default
}

// Do runs op until it succeeds, attempts run out, or ctx is cancelled.
// The last error is returned wrapped with the attempt count.
func (r Retrier) Do(ctx context.Context, name string, op func(context.Context) error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	prefix := r.Prefix
	if prefix == "" {
		prefix = "RETRY"
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		last = op(ctx)
		if last == nil {
			if attempt > 1 {
				snoop.ShowTo(r.sink(), snoop.LevelSuccess, prefix,
					name, "succeeded on attempt", attempt)
			}
			return nil
		}

		snoop.ShowTo(r.sink(), snoop.LevelWarning, prefix,
			name, "attempt", attempt, "failed:", last.Error())

		if attempt < attempts && r.Backoff > 0 {
			timer := time.NewTimer(r.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s: %w", name, ctx.Err())
			case <-timer.C:
			}
		}
	}
	return fmt.Errorf("%s: %d attempts failed: %w", name, attempts, last)
}

func (r Retrier) sink() snoop.Sink {
	if r.Sink != nil {
		return r.Sink
	}
	return snoop.Default()
}
