package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pawelm/fiszki-api/internal/api/shared"
	"github.com/pawelm/fiszki-api/internal/generation"
	"github.com/pawelm/fiszki-api/internal/review"
	"github.com/pawelm/fiszki-api/internal/service"
)

// GenerationHandler serves flashcard generation and generation history.
type GenerationHandler struct {
	orchestrator *generation.Orchestrator
	generations  *service.GenerationService
	sessions     *review.Registry
	validate     *validator.Validate
}

// NewGenerationHandler creates the generation handler. Panics on nil
// dependencies, as that is a wiring error.
func NewGenerationHandler(
	orchestrator *generation.Orchestrator,
	generations *service.GenerationService,
	sessions *review.Registry,
) *GenerationHandler {
	if orchestrator == nil {
		panic("orchestrator cannot be nil")
	}
	if generations == nil {
		panic("generations service cannot be nil")
	}
	if sessions == nil {
		panic("session registry cannot be nil")
	}
	return &GenerationHandler{
		orchestrator: orchestrator,
		generations:  generations,
		sessions:     sessions,
		validate:     validator.New(),
	}
}

// Generate handles POST /api/generations. On success it opens a review
// session over the proposals and returns them with the generation ID.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req GenerateFlashcardsRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	result, err := h.orchestrator.GenerateFlashcards(r.Context(), req.InputText, userID)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	session := review.NewSession(result.GenerationID, userID, result.Proposals)
	h.sessions.Put(session)

	shared.RespondWithJSON(w, r, http.StatusCreated, GenerateFlashcardsResponse{
		GenerationID: result.GenerationID,
		Proposals:    toProposalResponses(session.Proposals()),
	})
}

// List handles GET /api/generations, returning the user's generation
// history newest first.
func (h *GenerationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	gens, err := h.generations.List(r.Context(), userID, page, limit)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	resp := GenerationListResponse{
		Generations: make([]GenerationResponse, len(gens)),
		Page:        page,
		Limit:       limit,
	}
	for i, gen := range gens {
		resp.Generations[i] = toGenerationResponse(gen)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Get handles GET /api/generations/{generationID}.
func (h *GenerationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	id, err := int64URLParam(r, "generationID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	gen, err := h.generations.Get(r.Context(), userID, id)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	resp := toGenerationResponse(gen)
	resp.InputText = gen.InputText
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
