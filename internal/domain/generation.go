package domain

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Input text length limits for a generation request.
const (
	InputTextMinLen = 20
	InputTextMaxLen = 10000
)

// Generation-specific validation errors
var (
	// ErrGenerationUserIDEmpty is returned when a generation's user ID is empty.
	ErrGenerationUserIDEmpty = errors.New("generation user ID cannot be empty")

	// ErrInputTextTooShort is returned when the input text is below InputTextMinLen.
	ErrInputTextTooShort = fmt.Errorf("input text must be at least %d characters", InputTextMinLen)

	// ErrInputTextTooLong is returned when the input text exceeds InputTextMaxLen.
	ErrInputTextTooLong = fmt.Errorf("input text cannot exceed %d characters", InputTextMaxLen)

	// ErrGenerationModelEmpty is returned when the model identifier is empty.
	ErrGenerationModelEmpty = errors.New("generation model cannot be empty")

	// ErrGenerationDurationNegative is returned when the measured duration is negative.
	ErrGenerationDurationNegative = errors.New("generation duration cannot be negative")
)

// Generation is the persisted audit record of one successful AI generation:
// the submitted text, the model that served it, and the wall-clock duration
// of the AI call as measured by the orchestrator. A Generation is written
// exactly once, after the AI response has been received and parsed, and is
// immutable afterwards.
type Generation struct {
	ID         int64     `json:"generation_id"`
	UserID     uuid.UUID `json:"user_id"`
	InputText  string    `json:"input_text"`
	ModelUsed  string    `json:"model_used"`
	DurationMs int64     `json:"generation_duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewGeneration creates a Generation record for the given user, input text,
// model, and measured duration. The ID is left zero for the storage layer
// to assign on insert. Returns an error if validation fails.
func NewGeneration(userID uuid.UUID, inputText, modelUsed string, durationMs int64) (*Generation, error) {
	gen := &Generation{
		UserID:     userID,
		InputText:  inputText,
		ModelUsed:  modelUsed,
		DurationMs: durationMs,
		CreatedAt:  time.Now().UTC(),
	}

	if err := gen.Validate(); err != nil {
		return nil, err
	}

	return gen, nil
}

// Validate checks if the Generation has valid data.
// Returns an error if any field fails validation.
func (g *Generation) Validate() error {
	if g.UserID == uuid.Nil {
		return ErrGenerationUserIDEmpty
	}

	if err := ValidateInputText(g.InputText); err != nil {
		return err
	}

	if g.ModelUsed == "" {
		return ErrGenerationModelEmpty
	}

	if g.DurationMs < 0 {
		return ErrGenerationDurationNegative
	}

	return nil
}

// ValidateInputText checks the generation input against the
// InputTextMinLen..InputTextMaxLen bounds.
func ValidateInputText(text string) error {
	n := utf8.RuneCountInString(text)
	if n < InputTextMinLen {
		return ErrInputTextTooShort
	}
	if n > InputTextMaxLen {
		return ErrInputTextTooLong
	}
	return nil
}
