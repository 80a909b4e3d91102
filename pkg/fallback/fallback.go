// Package fallback provides an ordered-fallback combinator: run fallible
// operations in priority order, return the first success, and surface the
// last failure when every operation has been exhausted.
package fallback

import (
	"context"
	"errors"
)

// ErrNoOperations is returned by First when the operation list is empty.
var ErrNoOperations = errors.New("no operations to attempt")

// Op is one named fallible operation in a fallback chain.
type Op[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Attempt records the outcome of a single operation for diagnostics.
type Attempt struct {
	Name string
	Err  error // nil on success
}

// First runs ops in order and returns the first successful result together
// with the name of the operation that produced it. Failures do not propagate
// between attempts; they are recorded and the next operation runs. If every
// operation fails, the returned error is the last failure — earlier failures
// are expected fallback noise and live only in the attempt log.
func First[T any](ctx context.Context, ops []Op[T]) (T, string, []Attempt, error) {
	var zero T
	if len(ops) == 0 {
		return zero, "", nil, ErrNoOperations
	}

	attempts := make([]Attempt, 0, len(ops))
	var lastErr error
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return zero, "", attempts, err
		}

		result, err := op.Run(ctx)
		attempts = append(attempts, Attempt{Name: op.Name, Err: err})
		if err == nil {
			return result, op.Name, attempts, nil
		}
		lastErr = err
	}

	return zero, "", attempts, lastErr
}
