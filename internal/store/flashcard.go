package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pawelm/fiszki-api/internal/domain"
)

// SortField selects the column flashcard listings are ordered by.
type SortField string

// Valid sort fields for ListFlashcardsParams.
const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

// SortDirection selects ascending or descending ordering.
type SortDirection string

// Valid sort directions for ListFlashcardsParams.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ListFlashcardsParams describes one page of a user's flashcard collection.
// Page is 1-based. TypeFilter narrows the listing to a single flashcard
// type when non-empty.
type ListFlashcardsParams struct {
	UserID     uuid.UUID
	Page       int
	Limit      int
	Sort       SortField
	Direction  SortDirection
	TypeFilter domain.FlashcardType
}

// FlashcardPage is one page of flashcards plus the total count matching the
// filter (not just the page size), for pagination UIs.
type FlashcardPage struct {
	Flashcards []*domain.Flashcard
	Page       int
	Limit      int
	Total      int
}

// FlashcardStore defines the interface for flashcard persistence.
type FlashcardStore interface {
	// CreateMultiple inserts the given flashcards in order and assigns their
	// IDs in place. The operation must be atomic: run it within a
	// transaction via WithTx and RunInTransaction so that a failure inserts
	// nothing.
	//
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       return flashcardStore.WithTx(tx).CreateMultiple(ctx, cards)
	//   })
	CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error

	// GetByID retrieves a flashcard by ID, scoped to its owner.
	// Returns ErrFlashcardNotFound if the flashcard does not exist or
	// belongs to another user.
	GetByID(ctx context.Context, userID uuid.UUID, id int64) (*domain.Flashcard, error)

	// List returns one page of the user's flashcards with the total count.
	List(ctx context.Context, params ListFlashcardsParams) (*FlashcardPage, error)

	// UpdateContent replaces the front and back of a flashcard, scoped to
	// its owner, and returns the updated row.
	// Returns ErrFlashcardNotFound if no owned row matched.
	UpdateContent(ctx context.Context, userID uuid.UUID, id int64, front, back string) (*domain.Flashcard, error)

	// Delete removes a flashcard, scoped to its owner.
	// Returns ErrFlashcardNotFound if no owned row matched.
	Delete(ctx context.Context, userID uuid.UUID, id int64) error

	// WithTx returns a FlashcardStore bound to the given transaction.
	WithTx(tx *sql.Tx) FlashcardStore
}
