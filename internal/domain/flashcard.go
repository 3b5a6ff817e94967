package domain

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Flashcard content length limits, shared by domain validation and the
// review draft validation in internal/review.
const (
	FrontMaxLen = 200
	BackMaxLen  = 500
)

// FlashcardType describes how a flashcard came into existence.
type FlashcardType string

const (
	// FlashcardTypeManual marks a card the user created by hand.
	FlashcardTypeManual FlashcardType = "manual"

	// FlashcardTypeAIGenerated marks a card accepted from an AI proposal
	// without modification.
	FlashcardTypeAIGenerated FlashcardType = "ai_generated"

	// FlashcardTypeAIModified marks an AI proposal the user edited before
	// saving.
	FlashcardTypeAIModified FlashcardType = "ai_generated_modified"
)

// Flashcard-specific validation errors
var (
	// ErrFlashcardUserIDEmpty is returned when a flashcard's user ID is empty.
	ErrFlashcardUserIDEmpty = errors.New("flashcard user ID cannot be empty")

	// ErrFlashcardFrontEmpty is returned when the front text is empty.
	ErrFlashcardFrontEmpty = errors.New("flashcard front cannot be empty")

	// ErrFlashcardFrontTooLong is returned when the front text exceeds FrontMaxLen.
	ErrFlashcardFrontTooLong = fmt.Errorf("flashcard front cannot exceed %d characters", FrontMaxLen)

	// ErrFlashcardBackEmpty is returned when the back text is empty.
	ErrFlashcardBackEmpty = errors.New("flashcard back cannot be empty")

	// ErrFlashcardBackTooLong is returned when the back text exceeds BackMaxLen.
	ErrFlashcardBackTooLong = fmt.Errorf("flashcard back cannot exceed %d characters", BackMaxLen)

	// ErrFlashcardTypeInvalid is returned when the type is not one of the
	// known FlashcardType values.
	ErrFlashcardTypeInvalid = errors.New("invalid flashcard type")

	// ErrFlashcardGenerationMissing is returned when an AI-derived flashcard
	// carries no generation reference.
	ErrFlashcardGenerationMissing = errors.New("AI-generated flashcard must reference a generation")
)

// Flashcard is a persisted flashcard owned by a user. The ID is assigned by
// the storage layer on insert. GenerationID is nil for manually created
// cards and must reference the originating generation for AI-derived ones.
type Flashcard struct {
	ID           int64         `json:"flashcard_id"`
	UserID       uuid.UUID     `json:"user_id"`
	Front        string        `json:"front"`
	Back         string        `json:"back"`
	Type         FlashcardType `json:"type"`
	GenerationID *int64        `json:"generation_id"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewFlashcard creates a Flashcard with the given owner, content, type, and
// optional generation reference. The ID is left zero for the storage layer
// to assign. Returns an error if validation fails.
func NewFlashcard(
	userID uuid.UUID,
	front, back string,
	cardType FlashcardType,
	generationID *int64,
) (*Flashcard, error) {
	now := time.Now().UTC()
	card := &Flashcard{
		UserID:       userID,
		Front:        front,
		Back:         back,
		Type:         cardType,
		GenerationID: generationID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
// Returns an error if any field fails validation.
func (f *Flashcard) Validate() error {
	if f.UserID == uuid.Nil {
		return ErrFlashcardUserIDEmpty
	}

	if err := ValidateFront(f.Front); err != nil {
		return err
	}

	if err := ValidateBack(f.Back); err != nil {
		return err
	}

	if !isValidFlashcardType(f.Type) {
		return ErrFlashcardTypeInvalid
	}

	// Every non-manual card must link back to the generation it came from.
	if f.Type != FlashcardTypeManual && f.GenerationID == nil {
		return ErrFlashcardGenerationMissing
	}

	return nil
}

// UpdateContent replaces the front and back text and refreshes the
// UpdatedAt timestamp. Returns an error if the new content is invalid,
// leaving the flashcard unchanged.
func (f *Flashcard) UpdateContent(front, back string) error {
	if err := ValidateFront(front); err != nil {
		return err
	}
	if err := ValidateBack(back); err != nil {
		return err
	}

	f.Front = front
	f.Back = back
	f.UpdatedAt = time.Now().UTC()
	return nil
}

// ValidateFront checks the front text against the 1..FrontMaxLen bounds.
func ValidateFront(front string) error {
	if front == "" {
		return ErrFlashcardFrontEmpty
	}
	if utf8.RuneCountInString(front) > FrontMaxLen {
		return ErrFlashcardFrontTooLong
	}
	return nil
}

// ValidateBack checks the back text against the 1..BackMaxLen bounds.
func ValidateBack(back string) error {
	if back == "" {
		return ErrFlashcardBackEmpty
	}
	if utf8.RuneCountInString(back) > BackMaxLen {
		return ErrFlashcardBackTooLong
	}
	return nil
}

// isValidFlashcardType checks if the given type is a known FlashcardType.
func isValidFlashcardType(t FlashcardType) bool {
	switch t {
	case FlashcardTypeManual, FlashcardTypeAIGenerated, FlashcardTypeAIModified:
		return true
	default:
		return false
	}
}
