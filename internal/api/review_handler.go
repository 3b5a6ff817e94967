package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/pawelm/fiszki-api/internal/api/shared"
	"github.com/pawelm/fiszki-api/internal/domain"
	"github.com/pawelm/fiszki-api/internal/review"
)

// ReviewHandler serves the per-generation proposal review flow: status
// toggling, the edit lifecycle, and the bulk-save actions.
type ReviewHandler struct {
	sessions *review.Registry
	gateway  *review.Gateway
	validate *validator.Validate
}

// NewReviewHandler creates the review handler. Panics on nil
// dependencies, as that is a wiring error.
func NewReviewHandler(sessions *review.Registry, gateway *review.Gateway) *ReviewHandler {
	if sessions == nil {
		panic("session registry cannot be nil")
	}
	if gateway == nil {
		panic("gateway cannot be nil")
	}
	return &ReviewHandler{
		sessions: sessions,
		gateway:  gateway,
		validate: validator.New(),
	}
}

// GetSession handles GET /api/generations/{generationID}/review.
func (h *ReviewHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionResponse(session))
}

// SetStatus handles PUT .../review/proposals/{index}/status, toggling a
// proposal between accepted and rejected.
func (h *ReviewHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	session, index, ok := h.sessionAndIndex(w, r)
	if !ok {
		return
	}

	var req SetProposalStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := session.SetStatus(index, review.Status(req.Status)); err != nil {
		respondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionResponse(session))
}

// BeginEdit handles POST .../review/proposals/{index}/edit.
func (h *ReviewHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	session, index, ok := h.sessionAndIndex(w, r)
	if !ok {
		return
	}
	if err := session.BeginEdit(index); err != nil {
		respondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionResponse(session))
}

// CancelEdit handles DELETE .../review/proposals/{index}/edit,
// discarding the draft.
func (h *ReviewHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	session, index, ok := h.sessionAndIndex(w, r)
	if !ok {
		return
	}
	if err := session.CancelEdit(index); err != nil {
		respondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionResponse(session))
}

// UpdateDraft handles PATCH .../review/proposals/{index}/draft. The
// draft buffer keeps the text even when validation fails, so the client
// gets the field error alongside the updated session state.
func (h *ReviewHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	session, index, ok := h.sessionAndIndex(w, r)
	if !ok {
		return
	}

	var req UpdateDraftRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := session.UpdateDraft(index, review.Field(req.Field), req.Text); err != nil {
		respondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionResponse(session))
}

// SubmitEdit handles POST .../review/proposals/{index}/edit/submit,
// committing the draft when both fields validate.
func (h *ReviewHandler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	session, index, ok := h.sessionAndIndex(w, r)
	if !ok {
		return
	}
	if err := session.SubmitEdit(index); err != nil {
		respondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionResponse(session))
}

// SaveAccepted handles POST .../review/save-accepted, persisting the
// accepted and edited proposals in one transaction.
func (h *ReviewHandler) SaveAccepted(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, h.gateway.SaveAccepted)
}

// SaveAll handles POST .../review/save-all, persisting every proposal
// regardless of status.
func (h *ReviewHandler) SaveAll(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, h.gateway.SaveAll)
}

// Abandon handles DELETE .../review, discarding the session without
// saving anything.
func (h *ReviewHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}
	generationID, err := int64URLParam(r, "generationID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.sessions.Remove(generationID, userID)
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

func (h *ReviewHandler) save(
	w http.ResponseWriter,
	r *http.Request,
	saveFn func(ctx context.Context, s *review.Session) ([]*domain.Flashcard, error),
) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	cards, err := saveFn(r.Context(), session)
	if err != nil {
		// Storage failures surface their message so the user sees what
		// went wrong and can retry; the session stays unlocked.
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, err.Error(), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, SaveResponse{
		Flashcards: toFlashcardResponses(cards),
		SavedCount: len(cards),
	})
}

// session resolves the review session for the authenticated user and
// the generation named in the URL.
func (h *ReviewHandler) session(w http.ResponseWriter, r *http.Request) (*review.Session, bool) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return nil, false
	}
	generationID, err := int64URLParam(r, "generationID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return nil, false
	}
	session, err := h.sessions.Get(generationID, userID)
	if err != nil {
		respondMappedError(w, r, err)
		return nil, false
	}
	return session, true
}

// sessionAndIndex additionally parses the proposal index URL parameter.
func (h *ReviewHandler) sessionAndIndex(w http.ResponseWriter, r *http.Request) (*review.Session, int, bool) {
	session, ok := h.session(w, r)
	if !ok {
		return nil, 0, false
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid proposal index")
		return nil, 0, false
	}
	return session, index, true
}

func sessionResponse(s *review.Session) ReviewSessionResponse {
	return ReviewSessionResponse{
		GenerationID: s.GenerationID(),
		Saved:        s.Saved(),
		Proposals:    toProposalResponses(s.Proposals()),
	}
}
