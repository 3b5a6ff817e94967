package review

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pawelm/fiszki-api/internal/domain"
)

// ErrNothingToSave is returned by SaveAccepted when no proposal is accepted
// or edited. The check happens before any storage call.
var ErrNothingToSave = errors.New("no accepted or edited proposals to save")

// SaveItem is one flashcard in a bulk-create command. Review status is
// dropped here: it is a review-time-only field, never persisted.
type SaveItem struct {
	Front string
	Back  string
	Type  domain.FlashcardType
}

// BulkCreator persists a batch of flashcards atomically for one generation.
// Implemented by the flashcard service.
type BulkCreator interface {
	BulkCreate(ctx context.Context, userID uuid.UUID, generationID int64, items []SaveItem) ([]*domain.Flashcard, error)
}

// Gateway converts a session's chosen proposal subset into a single
// bulk-create call. A successful save permanently locks the session
// (at-most-once per batch); a failed save leaves it unlocked so the whole
// action can be retried, since nothing was committed.
type Gateway struct {
	creator BulkCreator
}

// NewGateway returns a gateway persisting through creator.
func NewGateway(creator BulkCreator) *Gateway {
	return &Gateway{creator: creator}
}

// SaveAccepted persists the accepted and edited proposals of the session.
// Returns ErrNothingToSave, before any storage call, when that set is empty.
func (g *Gateway) SaveAccepted(ctx context.Context, s *Session) ([]*domain.Flashcard, error) {
	return g.save(ctx, s, s.EligibleForBulkSave())
}

// SaveAll persists every proposal of the session regardless of status.
func (g *Gateway) SaveAll(ctx context.Context, s *Session) ([]*domain.Flashcard, error) {
	return g.save(ctx, s, s.SaveAllSet())
}

func (g *Gateway) save(ctx context.Context, s *Session, proposals []Proposal) ([]*domain.Flashcard, error) {
	if s.Saved() {
		return nil, ErrSessionSaved
	}
	if len(proposals) == 0 {
		return nil, ErrNothingToSave
	}

	items := make([]SaveItem, len(proposals))
	for i, p := range proposals {
		items[i] = SaveItem{Front: p.Front, Back: p.Back, Type: p.Type}
	}

	cards, err := g.creator.BulkCreate(ctx, s.UserID(), s.GenerationID(), items)
	if err != nil {
		// Surface the storage error verbatim; the session stays
		// unlocked so the save can be retried.
		return nil, err
	}

	s.markSaved()
	return cards, nil
}
