package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/photonp05/VartaLab/internal/models"
	"github.com/photonp05/VartaLab/internal/session"
	"github.com/photonp05/VartaLab/internal/store"
)

type contextKey string

const (
	UserContextKey  contextKey = "user"
	TokenContextKey contextKey = "token"
)

// AuthMiddleware resolves session tokens into user identities.
type AuthMiddleware struct {
	users    store.DataStore
	sessions session.Store
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(users store.DataStore, sessions session.Store) *AuthMiddleware {
	return &AuthMiddleware{users: users, sessions: sessions}
}

// RequireAuth verifies the session token and attaches the user to the
// request context. The token comes from the Authorization header, or from
// the "token" query parameter for WebSocket handshakes (browsers cannot set
// headers there).
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			jsonError(w, http.StatusUnauthorized, "missing session token")
			return
		}

		userID, err := m.sessions.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				jsonError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			jsonError(w, http.StatusServiceUnavailable, "session store unavailable")
			return
		}

		user, err := m.users.GetUserByID(r.Context(), userID)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "database error")
			return
		}
		if user == nil {
			jsonError(w, http.StatusUnauthorized, "unknown user")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		ctx = context.WithValue(ctx, TokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetUserFromContext retrieves the authenticated user from the request context.
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetTokenFromContext retrieves the session token from the request context.
func GetTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(TokenContextKey).(string)
	return token
}
