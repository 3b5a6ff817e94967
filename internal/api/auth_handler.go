package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pawelm/fiszki-api/internal/api/shared"
	"github.com/pawelm/fiszki-api/internal/platform/logger"
	"github.com/pawelm/fiszki-api/internal/service"
	"github.com/pawelm/fiszki-api/internal/service/auth"
)

// AuthHandler serves registration, login, and token refresh.
type AuthHandler struct {
	users      *service.UserService
	jwtService auth.JWTService
	validate   *validator.Validate
}

// NewAuthHandler creates the auth handler. Panics on nil dependencies,
// as that is a wiring error.
func NewAuthHandler(users *service.UserService, jwtService auth.JWTService) *AuthHandler {
	if users == nil {
		panic("users service cannot be nil")
	}
	if jwtService == nil {
		panic("jwtService cannot be nil")
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		validate:   validator.New(),
	}
}

// Register handles POST /api/auth/register. A successful registration
// returns 201 with a fresh token pair so the client is logged in
// immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	resp, err := h.tokenPair(r, user.ID)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	resp, err := h.tokenPair(r, user.ID)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// RefreshToken handles POST /api/auth/refresh, exchanging a valid
// refresh token for a new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	resp, err := h.tokenPair(r, claims.UserID)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// tokenPair issues a matched access and refresh token for userID.
func (h *AuthHandler) tokenPair(r *http.Request, userID uuid.UUID) (*AuthResponse, error) {
	ctx := r.Context()

	accessToken, err := h.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to generate access token",
			slog.String("error", err.Error()))
		return nil, err
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to generate refresh token",
			slog.String("error", err.Error()))
		return nil, err
	}

	return &AuthResponse{
		UserID:       userID.String(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
