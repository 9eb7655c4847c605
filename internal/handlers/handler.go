package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/photonp05/VartaLab/internal/chat"
	"github.com/photonp05/VartaLab/internal/presence"
	"github.com/photonp05/VartaLab/internal/session"
	"github.com/photonp05/VartaLab/internal/store"
)

// usernameRegex restricts usernames to a URL-safe alphabet.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{3,32}$`)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store    store.DataStore
	sessions session.Store
	chat     *chat.Service
	presence *presence.Registry
	log      zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(ds store.DataStore, sessions session.Store, chatSvc *chat.Service, reg *presence.Registry, logger zerolog.Logger) *Handler {
	return &Handler{store: ds, sessions: sessions, chat: chatSvc, presence: reg, log: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// sanitizeDisplayName trims and limits a display name to 100 characters,
// removing control characters.
func sanitizeDisplayName(name string) string {
	name = strings.TrimSpace(name)

	// Remove control characters
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	// Limit to 100 characters
	if len(name) > 100 {
		name = name[:100]
	}

	return name
}

// isValidUsername reports whether a username matches the accepted alphabet.
func isValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}
