package postgres

import (
	"context"
	"log/slog"

	"github.com/pawelm/fiszki-api/internal/platform/logger"
	"github.com/pawelm/fiszki-api/internal/store"
)

// GenerationLogStore implements store.GenerationLogStore using a PostgreSQL
// database as the storage backend.
type GenerationLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewGenerationLogStore creates a new PostgreSQL implementation of the
// GenerationLogStore interface. If logger is nil, a default logger will be
// used.
func NewGenerationLogStore(db store.DBTX, log *slog.Logger) *GenerationLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &GenerationLogStore{
		db:     db,
		logger: log.With(slog.String("component", "generation_log_store")),
	}
}

// Ensure GenerationLogStore implements store.GenerationLogStore interface
var _ store.GenerationLogStore = (*GenerationLogStore)(nil)

// InsertError implements store.GenerationLogStore.InsertError
// generationID is nil for failures that happened before a generation record
// existed; the column is nullable for exactly that case.
func (s *GenerationLogStore) InsertError(
	ctx context.Context,
	generationID *int64,
	code, description string,
) error {
	query := `
		INSERT INTO ai_generation_logs (generation_id, error_code, error_description)
		VALUES ($1, $2, $3)
	`
	if _, err := s.db.ExecContext(ctx, query, generationID, code, description); err != nil {
		log := logger.FromContextOrDefault(ctx, s.logger)
		log.Error("failed to insert generation error log",
			slog.String("error", err.Error()),
			slog.String("error_code", code))
		return mapError(err)
	}
	return nil
}
