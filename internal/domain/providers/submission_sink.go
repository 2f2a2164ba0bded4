package providers

import (
	"context"

	"github.com/reservenow/backend/internal/domain/entities"
)

// SubmissionSink records a reservation hand-off somewhere outside the
// process. Callers treat every error as non-fatal.
type SubmissionSink interface {
	Record(ctx context.Context, entry *entities.SubmissionLog) error
}
