package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pawelm/fiszki-api/internal/platform/logger"
	"github.com/pawelm/fiszki-api/internal/redact"
)

// ErrorResponse is the uniform error body every endpoint returns.
// TraceID lets a client correlate the response with server logs.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// RespondWithJSON writes data as a JSON response with the given status.
// Encoding failures are logged but cannot be reported to the client, as
// the header has already been written.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log := logger.FromContext(r.Context())
		log.Error("failed to encode JSON response",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path))
	}
}

// RespondWithError writes a uniform JSON error body, attaching the
// request's trace ID when one is present.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondError(w, r, status, ErrorResponse{
		Error:   message,
		TraceID: GetTraceID(r.Context()),
	})
}

// RespondWithErrorCode is RespondWithError with a machine-readable code
// attached, used for errors clients are expected to branch on.
func RespondWithErrorCode(w http.ResponseWriter, r *http.Request, status int, message, code string) {
	respondError(w, r, status, ErrorResponse{
		Error:   message,
		Code:    code,
		TraceID: GetTraceID(r.Context()),
	})
}

// RespondWithErrorAndLog logs the underlying error with credentials
// redacted, then writes the safe message to the client. The log level
// follows the status: 5xx is an operational problem, 429 is worth
// noticing, other 4xx are routine client mistakes.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	err error,
) {
	log := logger.FromContext(r.Context())

	attrs := []any{
		slog.Int("status", status),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", redact.Error(err)))
	}
	if traceID := GetTraceID(r.Context()); traceID != "" {
		attrs = append(attrs, slog.String("trace_id", traceID))
	}

	switch {
	case status >= 500:
		log.Error("request failed", attrs...)
	case status == http.StatusTooManyRequests:
		log.Warn("request rejected", attrs...)
	default:
		log.Debug("request rejected", attrs...)
	}

	RespondWithError(w, r, status, message)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode error response",
			slog.String("error", err.Error()))
	}
}
