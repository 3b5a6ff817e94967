package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pawelm/fiszki-api/internal/domain"
	"github.com/pawelm/fiszki-api/internal/platform/logger"
	"github.com/pawelm/fiszki-api/internal/platform/openrouter"
	"github.com/pawelm/fiszki-api/internal/redact"
	"github.com/pawelm/fiszki-api/internal/store"
)

// ChatClient is the slice of the provider client the orchestrator needs.
// *openrouter.Client satisfies it.
type ChatClient interface {
	SendChatRequest(ctx context.Context, userMessage string) (*openrouter.ChatResponse, error)
}

// Proposal is one AI-proposed flashcard, not yet persisted. Proposals always
// carry the ai_generated type; the review flow may later change it to
// ai_generated_modified.
type Proposal struct {
	Front string               `json:"front"`
	Back  string               `json:"back"`
	Type  domain.FlashcardType `json:"type"`
}

// Result is the outcome of a successful generation: the persisted audit
// record's ID and the proposals awaiting review.
type Result struct {
	GenerationID int64
	Proposals    []Proposal
}

// Orchestrator runs the five-step generation sequence: invoke the provider,
// measure duration, parse proposals, persist the generation record, and
// return the result. Nothing is retried at this layer; every failure is
// classified, logged once to the audit table, and returned to the caller.
type Orchestrator struct {
	chat        ChatClient
	generations store.GenerationStore
	logs        store.GenerationLogStore
	model       string
	logger      *slog.Logger
}

// NewOrchestrator wires the orchestrator's collaborators. The model name is
// recorded on every generation record.
func NewOrchestrator(
	chat ChatClient,
	generations store.GenerationStore,
	logs store.GenerationLogStore,
	model string,
	log *slog.Logger,
) (*Orchestrator, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat client is required")
	}
	if generations == nil {
		return nil, fmt.Errorf("generation store is required")
	}
	if logs == nil {
		return nil, fmt.Errorf("generation log store is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		chat:        chat,
		generations: generations,
		logs:        logs,
		model:       model,
		logger:      log.With(slog.String("component", "generation_orchestrator")),
	}, nil
}

// GenerateFlashcards turns inputText into flashcard proposals for userID.
//
// Input shorter than 20 or longer than 10000 characters is rejected before
// any network or storage call with a domain validation error. All other
// failures return a classified *Error after writing exactly one audit log
// entry; the log entry carries the generation ID only when the generation
// record already exists.
func (o *Orchestrator) GenerateFlashcards(ctx context.Context, inputText string, userID uuid.UUID) (*Result, error) {
	if err := domain.ValidateInputText(inputText); err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return nil, domain.ErrGenerationUserIDEmpty
	}

	log := logger.FromContextOrDefault(ctx, o.logger)

	start := time.Now()
	resp, err := o.chat.SendChatRequest(ctx, inputText)
	if err != nil {
		genErr := newError(CodeAIServiceError, "failed to generate flashcards using AI service", err)
		o.logGenerationError(ctx, nil, genErr)
		return nil, genErr
	}
	durationMs := time.Since(start).Round(time.Millisecond).Milliseconds()

	proposals, err := parseProposals(resp)
	if err != nil {
		genErr := newError(CodeAIServiceError, "failed to parse AI service response", err)
		o.logGenerationError(ctx, nil, genErr)
		return nil, genErr
	}

	gen, err := domain.NewGeneration(userID, inputText, o.model, durationMs)
	if err != nil {
		genErr := classify(err)
		o.logGenerationError(ctx, nil, genErr)
		return nil, genErr
	}
	if err := o.generations.Create(ctx, gen); err != nil {
		genErr := newError(CodeDatabaseError, "failed to create generation record", err)
		o.logGenerationError(ctx, nil, genErr)
		return nil, genErr
	}

	log.Info("flashcards generated",
		slog.Int64("generation_id", gen.ID),
		slog.Int("proposal_count", len(proposals)),
		slog.Int64("duration_ms", durationMs),
		slog.String("model", o.model))

	return &Result{GenerationID: gen.ID, Proposals: proposals}, nil
}

// parseProposals extracts the { "flashcards": [...] } structure from the
// first choice's content and validates each proposed card.
func parseProposals(resp *openrouter.ChatResponse) ([]Proposal, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response contains no choices")
	}

	var parsed struct {
		Flashcards []struct {
			Front string `json:"front"`
			Back  string `json:"back"`
		} `json:"flashcards"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("content is not valid JSON: %w", err)
	}

	proposals := make([]Proposal, 0, len(parsed.Flashcards))
	for i, card := range parsed.Flashcards {
		if err := domain.ValidateFront(card.Front); err != nil {
			return nil, fmt.Errorf("flashcard %d: %w", i, err)
		}
		if err := domain.ValidateBack(card.Back); err != nil {
			return nil, fmt.Errorf("flashcard %d: %w", i, err)
		}
		proposals = append(proposals, Proposal{
			Front: card.Front,
			Back:  card.Back,
			Type:  domain.FlashcardTypeAIGenerated,
		})
	}
	return proposals, nil
}

// logGenerationError writes one audit log entry for a failed generation.
// Best-effort: a failure to write the log is itself logged and discarded so
// it never masks the original error.
func (o *Orchestrator) logGenerationError(ctx context.Context, generationID *int64, genErr *Error) {
	if err := o.logs.InsertError(ctx, generationID, string(genErr.Code), genErr.Description()); err != nil {
		log := logger.FromContextOrDefault(ctx, o.logger)
		log.Error("failed to write generation error log",
			slog.String("original_code", string(genErr.Code)),
			slog.String("log_error", redact.Error(err)))
	}
}
