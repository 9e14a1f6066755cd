// Package poller implements a bounded or unbounded retry-with-interval
// primitive shared by the approval manager and the trade executor.
package poller

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrTimeout is returned when a bounded poll exhausts its attempts without
// producing a valid value.
var ErrTimeout = errors.New("poller: max attempts exceeded")

// Args configures a single Poll run.
type Args[T any] struct {
	// Fn is invoked once per attempt. An error aborts polling; callers that
	// want to tolerate transient failures swallow them inside Fn.
	Fn func(ctx context.Context) (T, error)
	// Validate reports whether the value terminates polling.
	Validate func(T) bool
	// Interval wait between attempts.
	Interval time.Duration
	// MaxAttempts caps the number of attempts. Zero means unbounded: the
	// poll runs until Validate accepts a value or ctx is cancelled. Block
	// confirmation latency is not caller-controlled, so confirmation waits
	// default to unbounded.
	MaxAttempts int
}

// Poll repeatedly invokes args.Fn at args.Interval until Validate accepts
// the result, the attempt budget is exhausted or ctx is cancelled. The first
// attempt runs immediately.
func Poll[T any](ctx context.Context, args Args[T]) (T, error) {
	var zero T

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := args.Fn(ctx)
		if err != nil {
			return zero, err
		}
		if args.Validate(v) {
			return v, nil
		}

		if args.MaxAttempts > 0 && attempt >= args.MaxAttempts {
			return zero, ErrTimeout
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(args.Interval):
		}
	}
}
