package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/OeunSochetra/storefront-api/internal/auth"
	"github.com/OeunSochetra/storefront-api/internal/http/respond"
	"github.com/OeunSochetra/storefront-api/internal/middleware"
	"github.com/OeunSochetra/storefront-api/internal/models/dto"
	"github.com/OeunSochetra/storefront-api/internal/service"
	"github.com/OeunSochetra/storefront-api/internal/storage"
)

// AuthHandler owns the register/login endpoints and the authenticated
// profile endpoints.
type AuthHandler struct {
	svc    *service.AuthService
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *service.AuthService, tokens *auth.TokenManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens, logger: logger}
}

// Register attaches auth routes to the mux. The /me routes sit behind the
// bearer-token gate; register and login are public.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.Handle("GET /api/me", middleware.RequireAuth(h.tokens, http.HandlerFunc(h.handleMe)))
	mux.Handle("PUT /api/me", middleware.RequireAuth(h.tokens, http.HandlerFunc(h.handleUpdateMe)))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRegistration(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.svc.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Image:    strings.TrimSpace(req.Image),
	})
	if err != nil {
		var dup *storage.DuplicateError
		switch {
		case errors.As(err, &dup):
			respond.Error(w, http.StatusBadRequest, dup.Error())
		default:
			h.logger.Error("register failed", "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respond.Success(w, http.StatusCreated, created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := h.svc.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	respond.Success(w, http.StatusCreated, dto.LoginResponse{AccessToken: token})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.PrincipalID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "invalid token")
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("fetch current user failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	respond.Success(w, http.StatusOK, user)
}

func (h *AuthHandler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.PrincipalID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		respond.Error(w, http.StatusBadRequest, "username cannot be empty")
		return
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) == "" {
		respond.Error(w, http.StatusBadRequest, "email cannot be empty")
		return
	}

	updated, err := h.svc.UpdateCurrentUser(r.Context(), userID, storage.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Image:    req.Image,
	})
	if err != nil {
		var dup *storage.DuplicateError
		switch {
		case errors.Is(err, storage.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "user not found")
		case errors.As(err, &dup):
			respond.Error(w, http.StatusBadRequest, dup.Error())
		default:
			h.logger.Error("update current user failed", "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	respond.Success(w, http.StatusOK, updated)
}

func validateRegistration(req dto.RegisterRequest) error {
	if req.Username == "" || req.Email == "" {
		return errors.New("username and email are required")
	}
	if len(req.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
