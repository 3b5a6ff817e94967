package api

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pawelm/fiszki-api/internal/api/shared"
	"github.com/pawelm/fiszki-api/internal/domain"
	"github.com/pawelm/fiszki-api/internal/service"
	"github.com/pawelm/fiszki-api/internal/store"
)

// FlashcardHandler serves the user's saved flashcard collection.
type FlashcardHandler struct {
	flashcards *service.FlashcardService
	validate   *validator.Validate
}

// NewFlashcardHandler creates the flashcard handler. Panics on a nil
// service, as that is a wiring error.
func NewFlashcardHandler(flashcards *service.FlashcardService) *FlashcardHandler {
	if flashcards == nil {
		panic("flashcards service cannot be nil")
	}
	return &FlashcardHandler{
		flashcards: flashcards,
		validate:   validator.New(),
	}
}

// List handles GET /api/flashcards with page, limit, sort, direction,
// and type query parameters.
func (h *FlashcardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	params := store.ListFlashcardsParams{
		UserID:    userID,
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 20),
		Sort:      store.SortField(r.URL.Query().Get("sort")),
		Direction: store.SortDirection(r.URL.Query().Get("direction")),
	}

	if typeFilter := r.URL.Query().Get("type"); typeFilter != "" {
		switch t := domain.FlashcardType(typeFilter); t {
		case domain.FlashcardTypeManual, domain.FlashcardTypeAIGenerated, domain.FlashcardTypeAIModified:
			params.TypeFilter = t
		default:
			shared.RespondWithError(w, r, http.StatusBadRequest,
				fmt.Sprintf("invalid type filter: %q", typeFilter))
			return
		}
	}

	page, err := h.flashcards.List(r.Context(), params)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, FlashcardListResponse{
		Flashcards: toFlashcardResponses(page.Flashcards),
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
	})
}

// Create handles POST /api/flashcards, creating a manual flashcard.
func (h *FlashcardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req CreateFlashcardRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	card, err := h.flashcards.CreateManual(r.Context(), userID, req.Front, req.Back)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, toFlashcardResponse(card))
}

// Get handles GET /api/flashcards/{flashcardID}.
func (h *FlashcardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	id, err := int64URLParam(r, "flashcardID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	card, err := h.flashcards.Get(r.Context(), userID, id)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toFlashcardResponse(card))
}

// Update handles PUT /api/flashcards/{flashcardID}, replacing the front
// and back text.
func (h *FlashcardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	id, err := int64URLParam(r, "flashcardID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateFlashcardRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	card, err := h.flashcards.UpdateContent(r.Context(), userID, id, req.Front, req.Back)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toFlashcardResponse(card))
}

// Delete handles DELETE /api/flashcards/{flashcardID}.
func (h *FlashcardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	id, err := int64URLParam(r, "flashcardID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.flashcards.Delete(r.Context(), userID, id); err != nil {
		respondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}
