// Package api implements the HTTP layer: request/response models,
// handlers, and the error-to-status mapping.
package api

import (
	"time"

	"github.com/pawelm/fiszki-api/internal/domain"
	"github.com/pawelm/fiszki-api/internal/review"
)

// --- Auth ---

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the payload for POST /api/auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse carries the token pair returned by register, login, and
// refresh.
type AuthResponse struct {
	UserID       string `json:"user_id,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// --- Generation ---

// GenerateFlashcardsRequest is the payload for POST /api/generations.
// The length bounds mirror the domain's input text limits.
type GenerateFlashcardsRequest struct {
	InputText string `json:"input_text" validate:"required,min=20,max=10000"`
}

// ProposalResponse is one proposed flashcard in a review session.
type ProposalResponse struct {
	Index  int    `json:"index"`
	Front  string `json:"front"`
	Back   string `json:"back"`
	Type   string `json:"type"`
	Status string `json:"status"`

	Editing    bool   `json:"editing,omitempty"`
	DraftFront string `json:"draft_front,omitempty"`
	DraftBack  string `json:"draft_back,omitempty"`
}

// GenerateFlashcardsResponse is returned by POST /api/generations: the
// persisted generation's ID plus the proposals awaiting review.
type GenerateFlashcardsResponse struct {
	GenerationID int64              `json:"generation_id"`
	Proposals    []ProposalResponse `json:"proposals"`
}

// GenerationResponse is one generation history record. InputText is
// included only in the single-record view.
type GenerationResponse struct {
	GenerationID int64     `json:"generation_id"`
	ModelUsed    string    `json:"model_used"`
	DurationMs   int64     `json:"generation_duration_ms"`
	InputText    string    `json:"input_text,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// GenerationListResponse is returned by GET /api/generations.
type GenerationListResponse struct {
	Generations []GenerationResponse `json:"generations"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
}

// --- Review ---

// SetProposalStatusRequest is the payload for setting a proposal's
// review status. Only "accepted" and "rejected" are settable.
type SetProposalStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

// UpdateDraftRequest is the payload for updating one field of an
// in-progress edit.
type UpdateDraftRequest struct {
	Field string `json:"field" validate:"required,oneof=front back"`
	Text  string `json:"text"`
}

// ReviewSessionResponse is the full state of a review session.
type ReviewSessionResponse struct {
	GenerationID int64              `json:"generation_id"`
	Saved        bool               `json:"saved"`
	Proposals    []ProposalResponse `json:"proposals"`
}

// SaveResponse is returned by the bulk-save endpoints.
type SaveResponse struct {
	Flashcards []FlashcardResponse `json:"flashcards"`
	SavedCount int                 `json:"saved_count"`
}

// --- Flashcards ---

// CreateFlashcardRequest is the payload for POST /api/flashcards.
type CreateFlashcardRequest struct {
	Front string `json:"front" validate:"required,max=200"`
	Back  string `json:"back" validate:"required,max=500"`
}

// UpdateFlashcardRequest is the payload for PUT /api/flashcards/{id}.
type UpdateFlashcardRequest struct {
	Front string `json:"front" validate:"required,max=200"`
	Back  string `json:"back" validate:"required,max=500"`
}

// FlashcardResponse is one persisted flashcard.
type FlashcardResponse struct {
	FlashcardID  int64     `json:"flashcard_id"`
	Front        string    `json:"front"`
	Back         string    `json:"back"`
	Type         string    `json:"type"`
	GenerationID *int64    `json:"generation_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FlashcardListResponse is returned by GET /api/flashcards.
type FlashcardListResponse struct {
	Flashcards []FlashcardResponse `json:"flashcards"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	Total      int                 `json:"total"`
}

// --- Mapping helpers ---

func toFlashcardResponse(card *domain.Flashcard) FlashcardResponse {
	return FlashcardResponse{
		FlashcardID:  card.ID,
		Front:        card.Front,
		Back:         card.Back,
		Type:         string(card.Type),
		GenerationID: card.GenerationID,
		CreatedAt:    card.CreatedAt,
		UpdatedAt:    card.UpdatedAt,
	}
}

func toFlashcardResponses(cards []*domain.Flashcard) []FlashcardResponse {
	out := make([]FlashcardResponse, len(cards))
	for i, card := range cards {
		out[i] = toFlashcardResponse(card)
	}
	return out
}

func toGenerationResponse(gen *domain.Generation) GenerationResponse {
	return GenerationResponse{
		GenerationID: gen.ID,
		ModelUsed:    gen.ModelUsed,
		DurationMs:   gen.DurationMs,
		CreatedAt:    gen.CreatedAt,
	}
}

func toProposalResponses(proposals []review.Proposal) []ProposalResponse {
	out := make([]ProposalResponse, len(proposals))
	for i, p := range proposals {
		out[i] = ProposalResponse{
			Index:      i,
			Front:      p.Front,
			Back:       p.Back,
			Type:       string(p.Type),
			Status:     string(p.Status),
			Editing:    p.Editing,
			DraftFront: p.DraftFront,
			DraftBack:  p.DraftBack,
		}
	}
	return out
}
