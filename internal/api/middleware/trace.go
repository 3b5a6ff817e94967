// Package middleware provides the HTTP middleware chain: trace IDs,
// request-scoped loggers, and JWT authentication.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pawelm/fiszki-api/internal/api/shared"
	"github.com/pawelm/fiszki-api/internal/platform/logger"
)

// TraceMiddleware assigns each request a trace ID, stores a
// request-scoped logger carrying it in the context, echoes the ID in the
// X-Trace-ID header, and logs request completion with timing.
func TraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := shared.GenerateTraceID()

			ctx := shared.SetTraceID(r.Context(), traceID)
			ctx = logger.WithRequestID(ctx, traceID)

			reqLogger := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, reqLogger)

			w.Header().Set(shared.TraceIDHeader, traceID)

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))

			reqLogger.Info("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)))
		})
	}
}

// statusWriter records the status code for the completion log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
