package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pawelm/fiszki-api/internal/api/middleware"
	"github.com/pawelm/fiszki-api/internal/config"
	"github.com/pawelm/fiszki-api/internal/domain"
	"github.com/pawelm/fiszki-api/internal/generation"
	"github.com/pawelm/fiszki-api/internal/platform/openrouter"
	"github.com/pawelm/fiszki-api/internal/review"
	"github.com/pawelm/fiszki-api/internal/service"
	"github.com/pawelm/fiszki-api/internal/service/auth"
	"github.com/pawelm/fiszki-api/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- In-memory stores ---

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*domain.User)}
}

func (m *memUserStore) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Email]; exists {
		return store.ErrEmailExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

type memFlashcardStore struct {
	mu     sync.Mutex
	nextID int64
	cards  []*domain.Flashcard
}

func (m *memFlashcardStore) CreateMultiple(_ context.Context, cards []*domain.Flashcard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, card := range cards {
		m.nextID++
		card.ID = m.nextID
		m.cards = append(m.cards, card)
	}
	return nil
}

func (m *memFlashcardStore) GetByID(_ context.Context, userID uuid.UUID, id int64) (*domain.Flashcard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, card := range m.cards {
		if card.ID == id && card.UserID == userID {
			return card, nil
		}
	}
	return nil, store.ErrFlashcardNotFound
}

func (m *memFlashcardStore) List(_ context.Context, params store.ListFlashcardsParams) (*store.FlashcardPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Flashcard, 0)
	for _, card := range m.cards {
		if card.UserID != params.UserID {
			continue
		}
		if params.TypeFilter != "" && card.Type != params.TypeFilter {
			continue
		}
		out = append(out, card)
	}
	return &store.FlashcardPage{Flashcards: out, Page: params.Page, Limit: params.Limit, Total: len(out)}, nil
}

func (m *memFlashcardStore) UpdateContent(
	_ context.Context,
	userID uuid.UUID,
	id int64,
	front, back string,
) (*domain.Flashcard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, card := range m.cards {
		if card.ID == id && card.UserID == userID {
			card.Front = front
			card.Back = back
			return card, nil
		}
	}
	return nil, store.ErrFlashcardNotFound
}

func (m *memFlashcardStore) Delete(_ context.Context, userID uuid.UUID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, card := range m.cards {
		if card.ID == id && card.UserID == userID {
			m.cards = append(m.cards[:i], m.cards[i+1:]...)
			return nil
		}
	}
	return store.ErrFlashcardNotFound
}

func (m *memFlashcardStore) WithTx(_ *sql.Tx) store.FlashcardStore { return m }

type memGenerationStore struct {
	mu     sync.Mutex
	nextID int64
	gens   []*domain.Generation
}

func (m *memGenerationStore) Create(_ context.Context, gen *domain.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	gen.ID = m.nextID
	m.gens = append(m.gens, gen)
	return nil
}

func (m *memGenerationStore) GetByID(_ context.Context, userID uuid.UUID, id int64) (*domain.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, gen := range m.gens {
		if gen.ID == id && gen.UserID == userID {
			return gen, nil
		}
	}
	return nil, store.ErrGenerationNotFound
}

func (m *memGenerationStore) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Generation, 0)
	for i := len(m.gens) - 1; i >= 0; i-- {
		if m.gens[i].UserID == userID {
			out = append(out, m.gens[i])
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type memLogStore struct {
	mu      sync.Mutex
	entries []string
}

func (m *memLogStore) InsertError(_ context.Context, _ *int64, code, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, code)
	return nil
}

// stubChat replays a fixed provider response, or an error.
type stubChat struct {
	content string
	err     error
}

func (s *stubChat) SendChatRequest(_ context.Context, _ string) (*openrouter.ChatResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &openrouter.ChatResponse{
		Choices: []openrouter.Choice{
			{Message: openrouter.AssistantMessage{Content: s.content}},
		},
	}, nil
}

// bulkCreatorFromStore adapts the in-memory flashcard store so review
// saves land in the same place the flashcard endpoints read from.
type bulkCreatorFromStore struct {
	flashcards *memFlashcardStore
	err        error
}

func (b *bulkCreatorFromStore) BulkCreate(
	ctx context.Context,
	userID uuid.UUID,
	generationID int64,
	items []review.SaveItem,
) ([]*domain.Flashcard, error) {
	if b.err != nil {
		return nil, b.err
	}
	cards := make([]*domain.Flashcard, len(items))
	for i, item := range items {
		genID := generationID
		card, err := domain.NewFlashcard(userID, item.Front, item.Back, item.Type, &genID)
		if err != nil {
			return nil, err
		}
		cards[i] = card
	}
	if err := b.flashcards.CreateMultiple(ctx, cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// --- Test environment ---

type testEnv struct {
	router     chi.Router
	users      *memUserStore
	flashcards *memFlashcardStore
	gens       *memGenerationStore
	logs       *memLogStore
	chat       *stubChat
	bulk       *bulkCreatorFromStore
	sessions   *review.Registry
}

// proposalsJSON is the provider payload the stub chat returns by
// default: two well-formed proposals.
const proposalsJSON = `{"flashcards":[` +
	`{"front":"What is Go?","back":"A compiled, statically typed language."},` +
	`{"front":"What is a goroutine?","back":"A lightweight thread managed by the Go runtime."}]}`

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	})
	require.NoError(t, err)

	env := &testEnv{
		users:      newMemUserStore(),
		flashcards: &memFlashcardStore{},
		gens:       &memGenerationStore{},
		logs:       &memLogStore{},
		chat:       &stubChat{content: proposalsJSON},
		sessions:   review.NewRegistry(),
	}
	env.bulk = &bulkCreatorFromStore{flashcards: env.flashcards}

	userService, err := service.NewUserService(
		env.users, auth.NewBcryptHasher(bcrypt.MinCost), auth.NewBcryptVerifier(), nil)
	require.NoError(t, err)

	// The *sql.DB is never dereferenced: the bulk-save path goes through
	// the stub BulkCreator, and everything else skips transactions.
	flashcardService, err := service.NewFlashcardService(&sql.DB{}, env.flashcards, nil)
	require.NoError(t, err)

	generationService, err := service.NewGenerationService(env.gens, nil)
	require.NoError(t, err)

	orchestrator, err := generation.NewOrchestrator(env.chat, env.gens, env.logs, "test-model", nil)
	require.NoError(t, err)

	env.router = NewRouter(Handlers{
		Auth:       NewAuthHandler(userService, jwtService),
		Generation: NewGenerationHandler(orchestrator, generationService, env.sessions),
		Review:     NewReviewHandler(env.sessions, review.NewGateway(env.bulk)),
		Flashcard:  NewFlashcardHandler(flashcardService),
	}, middleware.NewAuthMiddleware(jwtService), nil)

	return env
}

// do executes one request against the router and returns the recorder.
func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// register creates a user through the API and returns the access token.
func (env *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Email:    email,
		Password: "longenoughpw",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

// generate runs a generation through the API and returns the response.
func (env *testEnv) generate(t *testing.T, token string) GenerateFlashcardsResponse {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/generations", token, GenerateFlashcardsRequest{
		InputText: "A sufficiently long source text about the Go programming language and its runtime.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp GenerateFlashcardsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func reviewPath(generationID int64, suffix string) string {
	return fmt.Sprintf("/api/generations/%d/review%s", generationID, suffix)
}
