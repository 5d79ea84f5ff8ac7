package service

import (
	"context"
	"fmt"
	"time"
)

// DefaultCollaboratorTimeout bounds every call into an optional collaborator
// (matcher, confirmer) made during verification.
const DefaultCollaboratorTimeout = 2 * time.Second

// callWithTimeout runs fn in its own goroutine and gives up once timeout
// elapses or ctx is done. A panic inside fn comes back as an error. fn keeps
// running after a timeout; it receives the derived context so well-behaved
// collaborators stop early.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = DefaultCollaboratorTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("collaborator panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		done <- result{val: v, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("collaborator call: %w", ctx.Err())
	}
}
