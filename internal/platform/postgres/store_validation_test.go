package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/pawelm/fiszki-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingDBTX fails the test if any query reaches the database. Used to
// prove that validation short-circuits before SQL executes.
type failingDBTX struct {
	t *testing.T
}

func (f *failingDBTX) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	f.t.Fatalf("unexpected ExecContext: %s", query)
	return nil, nil
}

func (f *failingDBTX) QueryContext(_ context.Context, query string, _ ...any) (*sql.Rows, error) {
	f.t.Fatalf("unexpected QueryContext: %s", query)
	return nil, nil
}

func (f *failingDBTX) QueryRowContext(_ context.Context, query string, _ ...any) *sql.Row {
	f.t.Fatalf("unexpected QueryRowContext: %s", query)
	return nil
}

func TestUserStoreCreate_ValidationBeforeSQL(t *testing.T) {
	s := NewUserStore(&failingDBTX{t: t}, nil)

	t.Run("invalid_email", func(t *testing.T) {
		err := s.Create(context.Background(), &domain.User{
			ID:             uuid.New(),
			Email:          "not-an-email",
			HashedPassword: "$2a$10$hash",
		})
		assert.ErrorIs(t, err, domain.ErrEmailInvalid)
	})

	t.Run("missing_hash", func(t *testing.T) {
		err := s.Create(context.Background(), &domain.User{
			ID:    uuid.New(),
			Email: "ada@example.com",
		})
		assert.ErrorIs(t, err, domain.ErrHashedPasswordEmpty)
	})
}

func TestFlashcardStoreCreateMultiple_ValidationBeforeSQL(t *testing.T) {
	s := NewFlashcardStore(&failingDBTX{t: t}, nil)

	genID := int64(1)
	valid, err := domain.NewFlashcard(uuid.New(), "q", "a", domain.FlashcardTypeAIGenerated, &genID)
	require.NoError(t, err)

	invalid := &domain.Flashcard{
		UserID: uuid.New(),
		Front:  "",
		Back:   "a",
		Type:   domain.FlashcardTypeManual,
	}

	createErr := s.CreateMultiple(context.Background(), []*domain.Flashcard{valid, invalid})
	assert.ErrorIs(t, createErr, domain.ErrFlashcardFrontEmpty)
}

func TestFlashcardStoreUpdateContent_ValidationBeforeSQL(t *testing.T) {
	s := NewFlashcardStore(&failingDBTX{t: t}, nil)

	_, err := s.UpdateContent(context.Background(), uuid.New(), 1, "", "back")
	assert.ErrorIs(t, err, domain.ErrFlashcardFrontEmpty)
}

func TestGenerationStoreCreate_ValidationBeforeSQL(t *testing.T) {
	s := NewGenerationStore(&failingDBTX{t: t}, nil)

	err := s.Create(context.Background(), &domain.Generation{
		UserID:     uuid.New(),
		InputText:  "too short",
		ModelUsed:  "m",
		DurationMs: 10,
	})
	assert.ErrorIs(t, err, domain.ErrInputTextTooShort)
}
