package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pawelm/fiszki-api/internal/domain"
	"github.com/pawelm/fiszki-api/internal/service/auth"
	"github.com/pawelm/fiszki-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockUserStore is an in-memory store.UserStore with scriptable failures.
type mockUserStore struct {
	createErr error
	byEmail   map[string]*domain.User
	created   []*domain.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{byEmail: make(map[string]*domain.User)}
}

func (m *mockUserStore) Create(_ context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.byEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	m.byEmail[user.Email] = user
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

// fakeHasher marks hashes deterministically so tests can verify what was
// stored without real bcrypt work.
type fakeHasher struct {
	err error
}

func (f *fakeHasher) Hash(password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hashed:" + password, nil
}

type fakeVerifier struct{}

func (fakeVerifier) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func newTestUserService(t *testing.T, users store.UserStore) *UserService {
	t.Helper()
	svc, err := NewUserService(users, &fakeHasher{}, fakeVerifier{}, nil)
	require.NoError(t, err)
	return svc
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		users := newMockUserStore()
		svc := newTestUserService(t, users)

		user, err := svc.Register(context.Background(), "ada@example.com", "longenoughpw")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", user.Email)

		// Only the hash reaches the store; the plaintext is cleared.
		require.Len(t, users.created, 1)
		assert.Equal(t, "hashed:longenoughpw", users.created[0].HashedPassword)
		assert.Empty(t, users.created[0].Password)
	})

	t.Run("validation_failures", func(t *testing.T) {
		t.Parallel()
		svc := newTestUserService(t, newMockUserStore())

		tests := []struct {
			name     string
			email    string
			password string
			wantErr  error
		}{
			{name: "short_password", email: "a@example.com", password: "short", wantErr: domain.ErrPasswordTooShort},
			{name: "bad_email", email: "nope", password: "longenoughpw", wantErr: domain.ErrEmailInvalid},
			{name: "empty_email", email: "", password: "longenoughpw", wantErr: domain.ErrEmailEmpty},
		}
		for _, tt := range tests {
			_, err := svc.Register(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr, tt.name)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		t.Parallel()
		users := newMockUserStore()
		svc := newTestUserService(t, users)

		_, err := svc.Register(context.Background(), "ada@example.com", "longenoughpw")
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), "ada@example.com", "anotherlongpw")
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("hasher_failure", func(t *testing.T) {
		t.Parallel()
		users := newMockUserStore()
		svc, err := NewUserService(users, &fakeHasher{err: errors.New("entropy exhausted")}, fakeVerifier{}, nil)
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), "ada@example.com", "longenoughpw")
		assert.Error(t, err)
		assert.Empty(t, users.created)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*UserService, *mockUserStore) {
		users := newMockUserStore()
		svc := newTestUserService(t, users)
		_, err := svc.Register(context.Background(), "ada@example.com", "longenoughpw")
		require.NoError(t, err)
		return svc, users
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc, _ := setup(t)

		user, err := svc.Login(context.Background(), "ada@example.com", "longenoughpw")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", user.Email)
	})

	t.Run("wrong_password", func(t *testing.T) {
		t.Parallel()
		svc, _ := setup(t)

		_, err := svc.Login(context.Background(), "ada@example.com", "wrongpassword")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown_email_same_error", func(t *testing.T) {
		t.Parallel()
		svc, _ := setup(t)

		_, err := svc.Login(context.Background(), "nobody@example.com", "longenoughpw")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}
