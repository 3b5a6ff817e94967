package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pawelm/fiszki-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantIs   error
		passThru bool
	}{
		{name: "nil", err: nil},
		{
			name:   "no_rows_maps_to_not_found",
			err:    sql.ErrNoRows,
			wantIs: store.ErrNotFound,
		},
		{
			name:   "wrapped_no_rows",
			err:    fmt.Errorf("query failed: %w", sql.ErrNoRows),
			wantIs: store.ErrNotFound,
		},
		{
			name:   "unique_violation_maps_to_duplicate",
			err:    &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"},
			wantIs: store.ErrDuplicate,
		},
		{
			name:   "foreign_key_violation_maps_to_invalid_entity",
			err:    &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "flashcards_user_id_fkey"},
			wantIs: store.ErrInvalidEntity,
		},
		{
			name:   "check_violation_maps_to_invalid_entity",
			err:    &pgconn.PgError{Code: checkViolationCode, ConstraintName: "flashcards_front_length"},
			wantIs: store.ErrInvalidEntity,
		},
		{
			name:     "unknown_error_passes_through",
			err:      errors.New("connection reset by peer"),
			passThru: true,
		},
		{
			name:     "unmapped_pg_code_passes_through",
			err:      &pgconn.PgError{Code: "40001"},
			passThru: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mapError(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			if tt.passThru {
				assert.Equal(t, tt.err, got)
				return
			}
			assert.ErrorIs(t, got, tt.wantIs)
			// The original error stays in the chain for debugging.
			assert.ErrorIs(t, got, mapErrorTarget(tt.err))
		})
	}
}

// mapErrorTarget returns the value errors.Is should still find in the
// wrapped chain.
func mapErrorTarget(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sql.ErrNoRows
	}
	return err
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	unique := &pgconn.PgError{Code: uniqueViolationCode}
	fk := &pgconn.PgError{Code: foreignKeyViolationCode}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.False(t, IsUniqueViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("other")))

	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(unique))
	assert.False(t, IsForeignKeyViolation(nil))
}

func TestSortWhitelist(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "created_at", sortColumn(store.SortByCreatedAt))
	assert.Equal(t, "updated_at", sortColumn(store.SortByUpdatedAt))
	// Unrecognized input never reaches the query verbatim.
	assert.Equal(t, "created_at", sortColumn(store.SortField("front; DROP TABLE flashcards")))

	assert.Equal(t, "ASC", sortDirection(store.SortAsc))
	assert.Equal(t, "DESC", sortDirection(store.SortDesc))
	assert.Equal(t, "DESC", sortDirection(store.SortDirection("sideways")))
}
