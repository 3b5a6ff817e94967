package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pawelm/fiszki-api/internal/domain"
	"github.com/pawelm/fiszki-api/internal/platform/logger"
	"github.com/pawelm/fiszki-api/internal/store"
)

// GenerationStore implements store.GenerationStore using a PostgreSQL
// database as the storage backend.
type GenerationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewGenerationStore creates a new PostgreSQL implementation of the
// GenerationStore interface. If logger is nil, a default logger will be
// used.
func NewGenerationStore(db store.DBTX, log *slog.Logger) *GenerationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &GenerationStore{
		db:     db,
		logger: log.With(slog.String("component", "generation_store")),
	}
}

// Ensure GenerationStore implements store.GenerationStore interface
var _ store.GenerationStore = (*GenerationStore)(nil)

// Create implements store.GenerationStore.Create
// The generated generation_id and created_at are assigned in place.
// Returns store.ErrInvalidEntity when the user does not exist.
func (s *GenerationStore) Create(ctx context.Context, gen *domain.Generation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := gen.Validate(); err != nil {
		log.Warn("generation validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", gen.UserID.String()))
		return err
	}

	query := `
		INSERT INTO generations (user_id, input_text, model_used, generation_duration_ms)
		VALUES ($1, $2, $3, $4)
		RETURNING generation_id, created_at
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		gen.UserID,
		gen.InputText,
		gen.ModelUsed,
		gen.DurationMs,
	).Scan(&gen.ID, &gen.CreatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during generation creation",
				slog.String("user_id", gen.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found", store.ErrInvalidEntity, gen.UserID)
		}
		log.Error("failed to create generation record",
			slog.String("error", err.Error()),
			slog.String("user_id", gen.UserID.String()))
		return mapError(err)
	}

	log.Info("generation record created",
		slog.Int64("generation_id", gen.ID),
		slog.String("user_id", gen.UserID.String()),
		slog.Int64("duration_ms", gen.DurationMs))
	return nil
}

// GetByID implements store.GenerationStore.GetByID
// Returns store.ErrGenerationNotFound if the record does not exist or
// belongs to another user.
func (s *GenerationStore) GetByID(ctx context.Context, userID uuid.UUID, id int64) (*domain.Generation, error) {
	query := `
		SELECT generation_id, user_id, input_text, model_used, generation_duration_ms, created_at
		FROM generations
		WHERE generation_id = $1 AND user_id = $2
	`
	var gen domain.Generation
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&gen.ID,
		&gen.UserID,
		&gen.InputText,
		&gen.ModelUsed,
		&gen.DurationMs,
		&gen.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGenerationNotFound
		}
		return nil, fmt.Errorf("failed to scan generation: %w", err)
	}
	return &gen, nil
}

// ListByUser implements store.GenerationStore.ListByUser
func (s *GenerationStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Generation, error) {
	if limit < 1 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT generation_id, user_id, input_text, model_used, generation_duration_ms, created_at
		FROM generations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log := logger.FromContextOrDefault(ctx, s.logger)
		log.Error("failed to list generations",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	gens := make([]*domain.Generation, 0, limit)
	for rows.Next() {
		var gen domain.Generation
		if err := rows.Scan(
			&gen.ID,
			&gen.UserID,
			&gen.InputText,
			&gen.ModelUsed,
			&gen.DurationMs,
			&gen.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		gens = append(gens, &gen)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return gens, nil
}
