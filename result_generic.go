package punchd

import "context"

// RunWithValue executes fn under the runner's retry policy and returns its
// value alongside the run result. On failure the zero value is returned.
func RunWithValue[T any](ctx context.Context, r *Runner, fn func(ctx context.Context) (T, error)) (T, Result) {
	var value T

	result := r.Run(ctx, func(ctx context.Context) error {
		var err error
		value, err = fn(ctx)
		return err
	})

	if !result.Succeeded {
		var zero T
		return zero, result
	}

	return value, result
}
