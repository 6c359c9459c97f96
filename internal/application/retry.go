package application

import (
	"context"
	"errors"
	"fmt"
)

// retryWithFreshResource runs use against current. If that fails with an
// error accepted by recoverable, the resource is discarded, replaced through
// recreate, and use runs exactly once more. The resource that was last used
// is returned alongside the outcome.
func retryWithFreshResource[R any](
	ctx context.Context,
	current R,
	use func(context.Context, R) error,
	recoverable func(error) bool,
	recreate func(ctx context.Context, failed R, cause error) (R, error),
) (R, error) {
	err := use(ctx, current)
	if err == nil || !recoverable(err) {
		return current, err
	}

	fresh, recreateErr := recreate(ctx, current, err)
	if recreateErr != nil {
		return current, errors.Join(err, fmt.Errorf("recreate after failure: %w", recreateErr))
	}

	return fresh, use(ctx, fresh)
}
