package generation

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a generation failure for the audit log and the API
// error envelope.
type ErrorCode string

// Generation failure classes. Every orchestrator failure carries exactly one
// of these.
const (
	// CodeAIServiceError covers provider invocation failures and
	// unparseable provider output.
	CodeAIServiceError ErrorCode = "AI_SERVICE_ERROR"

	// CodeDatabaseError covers persistence failures for the generation
	// record.
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"

	// CodeUnknown covers any failure not already classified.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Error is the typed error returned by the orchestrator. Cause holds the
// underlying provider or storage error when one exists.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Description renders the message plus cause for the audit log.
func (e *Error) Description() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// newError builds a classified Error.
func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// classify returns err unchanged when it is already a classified *Error and
// wraps anything else as UNKNOWN.
func classify(err error) *Error {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr
	}
	return newError(CodeUnknown, "unexpected error during flashcard generation", err)
}
