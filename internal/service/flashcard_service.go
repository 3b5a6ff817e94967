package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pawelm/fiszki-api/internal/domain"
	"github.com/pawelm/fiszki-api/internal/platform/logger"
	"github.com/pawelm/fiszki-api/internal/review"
	"github.com/pawelm/fiszki-api/internal/store"
)

// FlashcardService provides flashcard operations on top of the store,
// including the transactional bulk creation used by the review save flow.
// It implements review.BulkCreator.
type FlashcardService struct {
	db         *sql.DB
	flashcards store.FlashcardStore
	logger     *slog.Logger
}

// Ensure FlashcardService implements review.BulkCreator
var _ review.BulkCreator = (*FlashcardService)(nil)

// NewFlashcardService wires the flashcard service. db is needed alongside
// the store to open transactions for bulk creation.
func NewFlashcardService(db *sql.DB, flashcards store.FlashcardStore, log *slog.Logger) (*FlashcardService, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if flashcards == nil {
		return nil, fmt.Errorf("flashcard store is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &FlashcardService{
		db:         db,
		flashcards: flashcards,
		logger:     log.With(slog.String("component", "flashcard_service")),
	}, nil
}

// BulkCreate implements review.BulkCreator. All items are inserted in one
// transaction: a failure anywhere inserts nothing, keeping the review batch
// retryable.
func (s *FlashcardService) BulkCreate(
	ctx context.Context,
	userID uuid.UUID,
	generationID int64,
	items []review.SaveItem,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards := make([]*domain.Flashcard, len(items))
	for i, item := range items {
		genID := generationID
		card, err := domain.NewFlashcard(userID, item.Front, item.Back, item.Type, &genID)
		if err != nil {
			return nil, err
		}
		cards[i] = card
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.flashcards.WithTx(tx).CreateMultiple(ctx, cards)
	})
	if err != nil {
		return nil, err
	}

	log.Info("flashcard batch saved",
		slog.Int("count", len(cards)),
		slog.Int64("generation_id", generationID),
		slog.String("user_id", userID.String()))
	return cards, nil
}

// CreateManual creates a single user-authored flashcard.
func (s *FlashcardService) CreateManual(
	ctx context.Context,
	userID uuid.UUID,
	front, back string,
) (*domain.Flashcard, error) {
	card, err := domain.NewFlashcard(userID, front, back, domain.FlashcardTypeManual, nil)
	if err != nil {
		return nil, err
	}
	if err := s.flashcards.CreateMultiple(ctx, []*domain.Flashcard{card}); err != nil {
		return nil, err
	}
	return card, nil
}

// List returns one page of the user's flashcards.
func (s *FlashcardService) List(ctx context.Context, params store.ListFlashcardsParams) (*store.FlashcardPage, error) {
	return s.flashcards.List(ctx, params)
}

// Get retrieves one flashcard, scoped to its owner.
func (s *FlashcardService) Get(ctx context.Context, userID uuid.UUID, id int64) (*domain.Flashcard, error) {
	return s.flashcards.GetByID(ctx, userID, id)
}

// UpdateContent replaces the front and back of an owned flashcard.
func (s *FlashcardService) UpdateContent(
	ctx context.Context,
	userID uuid.UUID,
	id int64,
	front, back string,
) (*domain.Flashcard, error) {
	return s.flashcards.UpdateContent(ctx, userID, id, front, back)
}

// Delete removes an owned flashcard.
func (s *FlashcardService) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	return s.flashcards.Delete(ctx, userID, id)
}
