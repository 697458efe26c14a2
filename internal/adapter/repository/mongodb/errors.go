package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/operman-code/petme/internal/listing/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

// mapError folds driver errors into the domain error set. Timeouts and network
// failures become ErrUnavailable so callers may retry.
func mapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case errors.Is(err, context.Canceled):
		return err
	case mongo.IsTimeout(err), mongo.IsNetworkError(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrInternal, err)
	}
}
