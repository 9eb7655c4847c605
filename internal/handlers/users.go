package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/photonp05/VartaLab/internal/api/middleware"
)

// Users handles listing every user except the requester.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	users, err := h.chat.ListOtherUsers(r.Context(), user.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, users)
}

// SearchUser handles exact-username lookup, excluding the requester.
func (h *Handler) SearchUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	username := chi.URLParam(r, "username")

	found, err := h.chat.FindUser(r.Context(), username, user.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if found == nil {
		h.Error(w, http.StatusNotFound, "no user found")
		return
	}

	h.JSON(w, http.StatusOK, found)
}
