package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/cache"
	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// computeBudget bounds a detached computation. Each one makes at most two
// rounds of collaborator calls.
func computeBudget(timeout time.Duration) time.Duration {
	return 2*timeout + time.Second
}

// cached returns the cached value for key or computes it. The computation is detached
// from the caller's cancellation so that an abandoned request still fills the cache;
// the caller itself stops waiting as soon as ctx is done. Failures are never stored.
func cached[T any](ctx context.Context, c *cache.ResultCache, key string, timeout time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	return cachedWhen(ctx, c, key, timeout, nil, compute)
}

// cachedWhen is cached with a predicate deciding whether a successful value is stored.
func cachedWhen[T any](ctx context.Context, c *cache.ResultCache, key string, timeout time.Duration, store func(T) bool, compute func(ctx context.Context) (T, error)) (T, error) {
	if c != nil {
		if v, ok := c.Get(key); ok {
			if hit, ok := v.(T); ok {
				return hit, nil
			}
		}
	}

	done := make(chan Outcome[T], 1)
	go func() {
		detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeBudget(timeout))
		defer cancel()

		v, err := compute(detached)
		if err == nil && c != nil && (store == nil || store(v)) {
			c.Set(key, v)
		}
		done <- Outcome[T]{Value: v, Err: err}
	}()

	select {
	case out := <-done:
		return out.Value, out.Err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("waiting for result: %w", ctx.Err())
	}
}

// validateStay checks a requested stay. When forward is set the stay may not
// start before today.
func validateStay(r models.DateRange, today time.Time, forward bool) *InputError {
	inputErr := newInputError()
	if r.CheckIn.IsZero() {
		inputErr.add("check_in", "is required")
	}
	if r.CheckOut.IsZero() {
		inputErr.add("check_out", "is required")
	}
	if !inputErr.empty() {
		return inputErr
	}
	if !r.Valid() {
		inputErr.add("check_out", "must be after check_in")
	}
	if forward && r.CheckIn.Before(models.Day(today)) {
		inputErr.add("check_in", "must not be in the past")
	}
	return inputErr
}
