// Package async provides the one-shot handoff primitive used to hand control
// to a presentation surface and receive exactly one result back.
package async

import (
	"context"
	"sync"
)

// Bridge is a single-assignment cell holding either a value or a failure.
// Exactly one of Complete/Fail has effect; later calls are no-ops. A surface
// that is torn down without resolving its bridge must Fail it with a dismissal
// error from its teardown hook, so Await never hangs on a dead surface.
type Bridge[T any] struct {
	once sync.Once
	done chan struct{}

	value T
	err   error
}

// New creates an unresolved bridge.
func New[T any]() *Bridge[T] {
	return &Bridge[T]{done: make(chan struct{})}
}

// Complete resolves the bridge with a value. Returns false if the bridge was
// already resolved.
func (b *Bridge[T]) Complete(value T) bool {
	won := false
	b.once.Do(func() {
		b.value = value
		close(b.done)
		won = true
	})
	return won
}

// Fail resolves the bridge with a failure. Returns false if the bridge was
// already resolved.
func (b *Bridge[T]) Fail(err error) bool {
	won := false
	b.once.Do(func() {
		b.err = err
		close(b.done)
		won = true
	})
	return won
}

// Await blocks until the bridge resolves or ctx is done. A context error does
// not resolve the bridge; a late Complete/Fail still wins for other waiters.
func (b *Bridge[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-b.done:
		return b.value, b.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Resolved reports whether the bridge already holds a result.
func (b *Bridge[T]) Resolved() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}
