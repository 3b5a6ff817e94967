package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pawelm/fiszki-api/internal/domain"
)

// GenerationStore defines the interface for generation audit records.
type GenerationStore interface {
	// Create inserts a generation record and assigns its ID in place.
	// Generation records are written once and never updated.
	Create(ctx context.Context, gen *domain.Generation) error

	// GetByID retrieves a generation record, scoped to its owner.
	// Returns ErrGenerationNotFound if it does not exist or belongs to
	// another user.
	GetByID(ctx context.Context, userID uuid.UUID, id int64) (*domain.Generation, error)

	// ListByUser returns the user's generation records, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error)
}

// GenerationLogStore records failed generation attempts for audit.
// Writes are best-effort: callers log and discard any error it returns so
// that an audit failure never masks the failure being audited.
type GenerationLogStore interface {
	// InsertError records one failed generation attempt. GenerationID is
	// nil for failures that happened before a generation record existed.
	InsertError(ctx context.Context, generationID *int64, code, description string) error
}
