package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studiobook/internal/domain"
)

// storeErr folds driver failures into the shared error taxonomy: missing rows
// map to ErrNotFound, context cancellation to ErrCancelled, everything else
// is tagged as a transport failure. The original error stays in the chain so
// callers can still unwrap driver specifics such as pgconn codes.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
}
