// Package shared holds helpers used by every API handler: request
// decoding, response writing, and the context keys handlers read.
package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"
)

// ContextKey is the type for context keys set by middleware and read by
// handlers. A dedicated type prevents collisions with keys from other
// packages.
type ContextKey string

const (
	// UserIDContextKey carries the authenticated user's UUID, set by the
	// auth middleware after token validation.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey carries the per-request trace ID, set by the trace
	// middleware and echoed in error responses.
	TraceIDKey ContextKey = "traceID"
)

// TraceIDHeader is the response header the trace middleware sets so
// clients can quote the trace ID when reporting problems.
const TraceIDHeader = "X-Trace-ID"

// SetTraceID returns a copy of ctx carrying the given trace ID.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID extracts the trace ID from the request context. Returns an
// empty string when no trace middleware ran.
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// GenerateTraceID produces a 16-byte random hex ID. If the system's
// entropy source fails it falls back to a timestamp-based ID rather than
// failing the request.
func GenerateTraceID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("trace-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// TraceIDFromRequest is a convenience wrapper for handlers that only
// have the request at hand.
func TraceIDFromRequest(r *http.Request) string {
	return GetTraceID(r.Context())
}
