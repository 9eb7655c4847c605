package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/photonp05/VartaLab/internal/api/middleware"
	"github.com/photonp05/VartaLab/internal/auth"
	"github.com/photonp05/VartaLab/internal/metrics"
	"github.com/photonp05/VartaLab/internal/models"
)

// SignupRequest represents the signup request body.
type SignupRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned on successful signup or login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup handles account creation. The display name defaults to the
// username when omitted.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !isValidUsername(req.Username) {
		h.Error(w, http.StatusBadRequest, "username must be 3-32 characters of letters, digits, '_', '.' or '-'")
		return
	}
	if len(req.Password) < 8 {
		h.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	displayName := sanitizeDisplayName(req.DisplayName)
	if displayName == "" {
		displayName = req.Username
	}

	existing, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if existing != nil {
		h.Error(w, http.StatusConflict, "username already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username, displayName, hash)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	metrics.SignupsTotal.Inc()

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.JSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login handles credential verification and session issuance. Unknown
// usernames and wrong passwords get the same answer.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		metrics.LoginsTotal.WithLabelValues("failed").Inc()
		h.Error(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	h.JSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Logout revokes the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetTokenFromContext(r.Context())
	if token == "" {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to revoke session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
