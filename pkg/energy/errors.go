package energy

import (
	"context"
	"errors"
	"fmt"
)

// ErrQueryTimeout marks a store call that ran past QueryTimeout. Callers may
// retry.
var ErrQueryTimeout = errors.New("query timed out")

func (e *Energy) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.QueryTimeout)
}

func translate(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
	}
	return err
}

func run[T any](e *Energy, ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	out, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, translate(ctx, err)
	}
	return out, nil
}
