package api

import (
	"errors"
	"net/http"

	"github.com/pawelm/fiszki-api/internal/api/shared"
	"github.com/pawelm/fiszki-api/internal/domain"
	"github.com/pawelm/fiszki-api/internal/generation"
	"github.com/pawelm/fiszki-api/internal/review"
	"github.com/pawelm/fiszki-api/internal/service/auth"
	"github.com/pawelm/fiszki-api/internal/store"
)

// MapErrorToStatusCode translates domain, store, and service errors into
// HTTP status codes. Unrecognized errors map to 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Authentication
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Conflicts
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, review.ErrSessionSaved):
		return http.StatusConflict
	case errors.Is(err, review.ErrAlreadyEditing):
		return http.StatusConflict

	// Not found
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, review.ErrSessionNotFound),
		errors.Is(err, review.ErrIndexOutOfRange):
		return http.StatusNotFound

	// Review state machine misuse
	case errors.Is(err, review.ErrNothingToSave),
		errors.Is(err, review.ErrCannotSetEdited),
		errors.Is(err, review.ErrInvalidStatus),
		errors.Is(err, review.ErrNotInEditMode),
		errors.Is(err, review.ErrUnknownField):
		return http.StatusBadRequest

	// Request shape
	case errors.Is(err, shared.ErrEmptyRequestBody):
		return http.StatusBadRequest

	// Domain validation
	case isValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Generation pipeline
	case isGenerationCode(err, generation.CodeAIServiceError):
		return http.StatusBadGateway
	case isGenerationCode(err, generation.CodeDatabaseError),
		isGenerationCode(err, generation.CodeUnknown):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err, hiding
// internals for anything that maps to a 5xx.
func GetSafeErrorMessage(err error) string {
	status := MapErrorToStatusCode(err)

	var genErr *generation.Error
	if errors.As(err, &genErr) {
		// The orchestrator's message is already written for clients.
		return genErr.Message
	}

	if status >= 500 {
		return "An unexpected error occurred"
	}
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return "Invalid email or password"
	}
	return err.Error()
}

// isValidationError matches the domain sentinels produced by input
// validation, all of which are safe to echo to clients.
func isValidationError(err error) bool {
	validationErrs := []error{
		domain.ErrEmailEmpty,
		domain.ErrEmailInvalid,
		domain.ErrPasswordTooShort,
		domain.ErrFlashcardFrontEmpty,
		domain.ErrFlashcardFrontTooLong,
		domain.ErrFlashcardBackEmpty,
		domain.ErrFlashcardBackTooLong,
		domain.ErrFlashcardTypeInvalid,
		domain.ErrInputTextTooShort,
		domain.ErrInputTextTooLong,
	}
	for _, target := range validationErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isGenerationCode(err error, code generation.ErrorCode) bool {
	var genErr *generation.Error
	return errors.As(err, &genErr) && genErr.Code == code
}
