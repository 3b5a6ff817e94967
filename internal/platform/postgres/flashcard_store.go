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

// FlashcardStore implements store.FlashcardStore using a PostgreSQL
// database as the storage backend.
type FlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewFlashcardStore creates a new PostgreSQL implementation of the
// FlashcardStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewFlashcardStore(db store.DBTX, log *slog.Logger) *FlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &FlashcardStore{
		db:     db,
		logger: log.With(slog.String("component", "flashcard_store")),
	}
}

// Ensure FlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*FlashcardStore)(nil)

// WithTx implements store.FlashcardStore.WithTx
func (s *FlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &FlashcardStore{
		db:     tx,
		logger: s.logger,
	}
}

// CreateMultiple implements store.FlashcardStore.CreateMultiple
// It inserts the flashcards in order and assigns their generated IDs and
// timestamps in place. Callers needing atomicity must run it on a
// transaction-bound store (WithTx inside store.RunInTransaction).
// Returns store.ErrInvalidEntity when the user or generation does not exist
// (foreign key violation).
func (s *FlashcardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("flashcard validation failed during bulk create",
				slog.String("error", err.Error()),
				slog.String("user_id", card.UserID.String()))
			return err
		}
	}

	query := `
		INSERT INTO flashcards (user_id, front, back, type, generation_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING flashcard_id, created_at, updated_at
	`
	for i, card := range cards {
		err := s.db.QueryRowContext(
			ctx,
			query,
			card.UserID,
			card.Front,
			card.Back,
			card.Type,
			card.GenerationID,
		).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
		if err != nil {
			if IsForeignKeyViolation(err) {
				log.Warn("foreign key violation during bulk create",
					slog.String("error", err.Error()),
					slog.String("user_id", card.UserID.String()),
					slog.Int("index", i))
				return fmt.Errorf("%w: referenced user or generation not found", store.ErrInvalidEntity)
			}
			log.Error("failed to insert flashcard",
				slog.String("error", err.Error()),
				slog.String("user_id", card.UserID.String()),
				slog.Int("index", i))
			return mapError(err)
		}
	}

	log.Info("flashcards created",
		slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.FlashcardStore.GetByID
// Returns store.ErrFlashcardNotFound if the flashcard does not exist or
// belongs to another user.
func (s *FlashcardStore) GetByID(ctx context.Context, userID uuid.UUID, id int64) (*domain.Flashcard, error) {
	query := `
		SELECT flashcard_id, user_id, front, back, type, generation_id, created_at, updated_at
		FROM flashcards
		WHERE flashcard_id = $1 AND user_id = $2
	`
	return s.scanFlashcard(ctx, s.db.QueryRowContext(ctx, query, id, userID))
}

// List implements store.FlashcardStore.List
// It returns one page of the user's flashcards plus the total count
// matching the filter. Sort column and direction are mapped through a
// whitelist; anything unrecognized falls back to created_at descending.
func (s *FlashcardStore) List(ctx context.Context, params store.ListFlashcardsParams) (*store.FlashcardPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	where := "WHERE user_id = $1"
	args := []any{params.UserID}
	if params.TypeFilter != "" {
		where += " AND type = $2"
		args = append(args, params.TypeFilter)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM flashcards " + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count flashcards", slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	query := fmt.Sprintf(`
		SELECT flashcard_id, user_id, front, back, type, generation_id, created_at, updated_at
		FROM flashcards
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, sortColumn(params.Sort), sortDirection(params.Direction), len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list flashcards", slog.String("error", err.Error()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.Flashcard, 0, limit)
	for rows.Next() {
		var card domain.Flashcard
		if err := rows.Scan(
			&card.ID,
			&card.UserID,
			&card.Front,
			&card.Back,
			&card.Type,
			&card.GenerationID,
			&card.CreatedAt,
			&card.UpdatedAt,
		); err != nil {
			log.Error("failed to scan flashcard row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan flashcard: %w", err)
		}
		cards = append(cards, &card)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return &store.FlashcardPage{
		Flashcards: cards,
		Page:       page,
		Limit:      limit,
		Total:      total,
	}, nil
}

// UpdateContent implements store.FlashcardStore.UpdateContent
// Returns store.ErrFlashcardNotFound if no owned row matched.
func (s *FlashcardStore) UpdateContent(
	ctx context.Context,
	userID uuid.UUID,
	id int64,
	front, back string,
) (*domain.Flashcard, error) {
	if err := domain.ValidateFront(front); err != nil {
		return nil, err
	}
	if err := domain.ValidateBack(back); err != nil {
		return nil, err
	}

	query := `
		UPDATE flashcards
		SET front = $1, back = $2, updated_at = now()
		WHERE flashcard_id = $3 AND user_id = $4
		RETURNING flashcard_id, user_id, front, back, type, generation_id, created_at, updated_at
	`
	card, err := s.scanFlashcard(ctx, s.db.QueryRowContext(ctx, query, front, back, id, userID))
	if err != nil {
		return nil, err
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Info("flashcard updated",
		slog.Int64("flashcard_id", card.ID),
		slog.String("user_id", userID.String()))
	return card, nil
}

// Delete implements store.FlashcardStore.Delete
// Returns store.ErrFlashcardNotFound if no owned row matched.
func (s *FlashcardStore) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM flashcards WHERE flashcard_id = $1 AND user_id = $2`,
		id,
		userID,
	)
	if err != nil {
		log := logger.FromContextOrDefault(ctx, s.logger)
		log.Error("failed to delete flashcard",
			slog.String("error", err.Error()),
			slog.Int64("flashcard_id", id))
		return mapError(err)
	}
	return checkRowsAffected(result, store.ErrFlashcardNotFound)
}

func (s *FlashcardStore) scanFlashcard(ctx context.Context, row *sql.Row) (*domain.Flashcard, error) {
	var card domain.Flashcard
	err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.Front,
		&card.Back,
		&card.Type,
		&card.GenerationID,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrFlashcardNotFound
		}
		log := logger.FromContextOrDefault(ctx, s.logger)
		log.Error("failed to scan flashcard row", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to scan flashcard: %w", err)
	}
	return &card, nil
}

// sortColumn maps a sort field through the whitelist of sortable columns.
func sortColumn(field store.SortField) string {
	switch field {
	case store.SortByUpdatedAt:
		return "updated_at"
	default:
		return "created_at"
	}
}

// sortDirection maps a direction through the whitelist.
func sortDirection(dir store.SortDirection) string {
	if dir == store.SortAsc {
		return "ASC"
	}
	return "DESC"
}
