package search

import (
	"context"
	"errors"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrLocationNotFound = errors.New("location not found")
	ErrNoDataForCrop    = errors.New("no data for crop")
	ErrTimeout          = errors.New("search timed out")
	ErrCancelled        = errors.New("search cancelled")
)

// interrupted maps a finished context to the search outcome it stands for
func interrupted(ctx context.Context) error {
	cause := context.Cause(ctx)
	switch {
	case errors.Is(cause, ErrTimeout), errors.Is(cause, context.DeadlineExceeded):
		return ErrTimeout
	default:
		return ErrCancelled
	}
}
