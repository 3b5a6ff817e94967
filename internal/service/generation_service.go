package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pawelm/fiszki-api/internal/domain"
	"github.com/pawelm/fiszki-api/internal/store"
)

// GenerationService exposes a user's generation history.
type GenerationService struct {
	generations store.GenerationStore
	logger      *slog.Logger
}

// NewGenerationService wires the generation history service.
func NewGenerationService(generations store.GenerationStore, log *slog.Logger) (*GenerationService, error) {
	if generations == nil {
		return nil, fmt.Errorf("generation store is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &GenerationService{
		generations: generations,
		logger:      log.With(slog.String("component", "generation_service")),
	}, nil
}

// Get retrieves one generation record, scoped to its owner.
func (s *GenerationService) Get(ctx context.Context, userID uuid.UUID, id int64) (*domain.Generation, error) {
	return s.generations.GetByID(ctx, userID, id)
}

// List returns one page of the user's generation records, newest first.
// Page is 1-based.
func (s *GenerationService) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]*domain.Generation, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.generations.ListByUser(ctx, userID, limit, (page-1)*limit)
}
