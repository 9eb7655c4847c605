package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/photonp05/VartaLab/internal/api/middleware"
	"github.com/photonp05/VartaLab/internal/chat"
)

// Conversation handles retrieving the full ordered message history between
// the requester and another user. An empty history is a 200 with an empty
// list, not an error.
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	otherID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user ID format")
		return
	}

	other, err := h.store.GetUserByID(r.Context(), otherID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if other == nil {
		h.Error(w, http.StatusNotFound, "user not found")
		return
	}

	msgs, err := h.chat.GetConversation(r.Context(), user.ID, otherID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if msgs == nil {
		msgs = []chat.ConversationMessage{}
	}

	h.JSON(w, http.StatusOK, msgs)
}
