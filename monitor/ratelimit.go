package monitor

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds how many operations run at once. Blocked callers wait
// until a slot frees or their context is cancelled.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter creates a Limiter admitting at most n concurrent operations.
func NewLimiter(n int64) *Limiter {
	return &Limiter{sem: semaphore.NewWeighted(n)}
}

// Do runs op while holding one slot.
func (l *Limiter) Do(ctx context.Context, op func(context.Context) error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire slot: %w", err)
	}
	defer l.sem.Release(1)
	return op(ctx)
}

// TryDo runs op only if a slot is immediately available. The bool reports
// whether op ran.
func (l *Limiter) TryDo(ctx context.Context, op func(context.Context) error) (bool, error) {
	if !l.sem.TryAcquire(1) {
		return false, nil
	}
	defer l.sem.Release(1)
	return true, op(ctx)
}
